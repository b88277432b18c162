package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/analyze_system.txt
	analyzeSystemTemplate string
	//go:embed prompts/rewrite_system.txt
	rewriteSystemTemplate string
)

// AnalysisSystemPrompt returns the résumé analysis instructions for the given keywords.
func AnalysisSystemPrompt(keywords []string) string {
	return strings.ReplaceAll(analyzeSystemTemplate, "{{keywords}}", strings.Join(keywords, ", "))
}

// AnalysisUserPrompt formats the résumé text and keywords as the user message.
func AnalysisUserPrompt(resumeText string, keywords []string) string {
	return "Resume Text:\n" + resumeText + "\n\nTarget Keywords: " + strings.Join(keywords, ", ")
}

// RewriteSystemPrompt interpolates role and tone verbatim.
func RewriteSystemPrompt(role, tone string) string {
	return strings.NewReplacer("{{role}}", role, "{{tone}}", tone).Replace(rewriteSystemTemplate)
}
