package model

import (
	"encoding/json"
	"math"
	"strings"
)

// ParsedResume is the structured projection of a résumé produced by the
// completion provider. Every field is untrusted.
type ParsedResume struct {
	PersonalInfo        PersonalInfo     `json:"personal_info"`
	ProfessionalSummary string           `json:"professional_summary"`
	Skills              Skills           `json:"skills"`
	WorkExperience      []WorkExperience `json:"work_experience"`
	Education           []Education      `json:"education"`
	Certifications      []string         `json:"certifications"`
	Projects            []Project        `json:"projects"`
}

type PersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Links    []Link `json:"links"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Tools     []string `json:"tools"`
}

// All returns technical, soft and tool skills in that order.
func (s Skills) All() []string {
	out := make([]string, 0, len(s.Technical)+len(s.Soft)+len(s.Tools))
	out = append(out, s.Technical...)
	out = append(out, s.Soft...)
	return append(out, s.Tools...)
}

type WorkExperience struct {
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	BulletPoints []string `json:"bullet_points"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// HasName reports whether the résumé carries a non-blank full name.
func (r *ParsedResume) HasName() bool {
	return r != nil && strings.TrimSpace(r.PersonalInfo.FullName) != ""
}

// ResumeAnalysis is the ATS assessment returned alongside the parse.
type ResumeAnalysis struct {
	ATSScore               int          `json:"ats_score"`
	KeywordMatchPercentage float64      `json:"keyword_match_percentage"`
	MatchedKeywords        []string     `json:"matched_keywords"`
	MissingKeywords        []string     `json:"missing_keywords"`
	WeakPlacements         []string     `json:"weak_placements"`
	OverusedKeywords       []string     `json:"overused_keywords"`
	ImprovementSuggestions []Suggestion `json:"improvement_suggestions"`
}

type Suggestion struct {
	Section         string `json:"section"`
	Suggestion      string `json:"suggestion"`
	RewrittenBullet string `json:"rewritten_bullet,omitempty"`
}

// UnmarshalJSON accepts any JSON number for ats_score and rounds it to the
// nearest integer in 0..100.
func (a *ResumeAnalysis) UnmarshalJSON(data []byte) error {
	type plain ResumeAnalysis
	aux := struct {
		*plain
		ATSScore float64 `json:"ats_score"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ATSScore = int(math.Round(clampFloat(aux.ATSScore)))
	return nil
}

// Clamp bounds both scores to 0..100 and replaces nil lists with empty ones.
func (a *ResumeAnalysis) Clamp() {
	a.ATSScore = clampPercent(a.ATSScore)
	a.KeywordMatchPercentage = clampFloat(a.KeywordMatchPercentage)
	for _, list := range []*[]string{&a.MatchedKeywords, &a.MissingKeywords, &a.WeakPlacements, &a.OverusedKeywords} {
		if *list == nil {
			*list = []string{}
		}
	}
	if a.ImprovementSuggestions == nil {
		a.ImprovementSuggestions = []Suggestion{}
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampFloat(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
