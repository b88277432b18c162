package main

import "resumeflow/resume/model"

func sampleResume() model.ParsedResume {
	return model.ParsedResume{
		PersonalInfo: model.PersonalInfo{
			FullName: "Priya Sharma",
			Email:    "priya.sharma@example.com",
			Phone:    "+91 98765 43210",
			Location: "Bengaluru, India",
			Links: []model.Link{
				{Label: "GitHub", URL: "https://github.com/priyasharma"},
				{Label: "LinkedIn", URL: "https://www.linkedin.com/in/priyasharma"},
			},
		},
		ProfessionalSummary: "Backend engineer with six years of experience building payment and ledger services in Go.",
		Skills: model.Skills{
			Technical: []string{"Go", "PostgreSQL", "gRPC"},
			Soft:      []string{"Mentoring", "Technical writing"},
			Tools:     []string{"Docker", "Terraform"},
		},
		WorkExperience: []model.WorkExperience{
			{
				Role:     "Senior Software Engineer",
				Company:  "Acme Payments",
				Duration: "2021 - Present",
				BulletPoints: []string{
					"Led migration of the settlement pipeline to event sourcing, cutting reconciliation time by 60%.",
					"Designed idempotent webhook ingestion handling 2M events per day.",
				},
			},
			{
				Role:         "Software Engineer",
				Company:      "Ledgerly",
				Duration:     "2018 - 2021",
				BulletPoints: []string{"Built the double-entry ledger service used by every product team."},
			},
		},
		Education: []model.Education{
			{Degree: "B.Tech, Computer Science", Institution: "IIT Madras", Year: "2018"},
		},
		Projects: []model.Project{
			{Title: "pgqueue", Description: "A transactional job queue on top of PostgreSQL.", Link: "https://github.com/priyasharma/pgqueue"},
		},
	}
}
