package render

import (
	"html/template"
	"strings"
)

// Theme names accepted by Portfolio.
const (
	ThemeLight   = "light"
	ThemeDark    = "dark"
	ThemeNeutral = "neutral"
)

// Palette holds the six colors a portfolio theme defines.
type Palette struct {
	Bg            template.CSS
	Text          template.CSS
	SecondaryText template.CSS
	Accent        template.CSS
	CardBg        template.CSS
	Border        template.CSS
}

// Palettes centralizes the color scheme of each theme.
var Palettes = map[string]Palette{
	ThemeLight: {
		Bg:            "#ffffff",
		Text:          "#1a1a1a",
		SecondaryText: "#4a4a4a",
		Accent:        "#4f46e5",
		CardBg:        "#f9fafb",
		Border:        "#e5e7eb",
	},
	ThemeDark: {
		Bg:            "#0f172a",
		Text:          "#f8fafc",
		SecondaryText: "#94a3b8",
		Accent:        "#818cf8",
		CardBg:        "#1e293b",
		Border:        "#334155",
	},
	ThemeNeutral: {
		Bg:            "#f4f4f5",
		Text:          "#27272a",
		SecondaryText: "#52525b",
		Accent:        "#18181b",
		CardBg:        "#ffffff",
		Border:        "#e4e4e7",
	},
}

// NormalizeTheme maps unknown or empty names to light.
func NormalizeTheme(theme string) string {
	t := strings.ToLower(strings.TrimSpace(theme))
	if _, ok := Palettes[t]; ok {
		return t
	}
	return ThemeLight
}
