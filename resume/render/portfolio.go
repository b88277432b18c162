package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"resumeflow/resume/model"
)

const descriptionRunes = 160

//go:embed templates/portfolio.html.tmpl
var templateFS embed.FS

var portfolioTemplate = template.Must(template.ParseFS(templateFS, "templates/portfolio.html.tmpl"))

type portfolioView struct {
	Name        string
	Description string
	Skills      []string
	Palette     Palette
	Resume      *model.ParsedResume
}

// Portfolio renders a self-contained HTML page for the résumé. Output depends
// only on its arguments. Every résumé field is escaped for its context and
// unsafe link schemes are neutralized.
func Portfolio(resume *model.ParsedResume, theme string) (string, error) {
	if resume == nil {
		return "", errors.New("resume is required")
	}
	view := portfolioView{
		Name:        resume.PersonalInfo.FullName,
		Description: truncateRunes(resume.ProfessionalSummary, descriptionRunes),
		Skills:      resume.Skills.All(),
		Palette:     Palettes[NormalizeTheme(theme)],
		Resume:      resume,
	}

	var buf bytes.Buffer
	if err := portfolioTemplate.ExecuteTemplate(&buf, "portfolio.html.tmpl", view); err != nil {
		return "", fmt.Errorf("render portfolio: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
