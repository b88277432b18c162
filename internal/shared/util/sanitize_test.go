package util

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "portfolio.html", want: "portfolio.html"},
		{in: " My Résumé (final).pdf ", want: "My_R_sum___final_.pdf"},
		{in: "../../etc/passwd", want: "__.__etc_passwd"},
		{in: "cv..final.pdf", want: "cv._final.pdf"},
		{in: ".env", want: "env"},
		{in: `dir\file.txt`, want: "dir_file.txt"},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileNameRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "...", "/"} {
		if _, err := SanitizeFileName(in); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("SanitizeFileName(%q): expected ErrInvalidFileName, got %v", in, err)
		}
	}
}

func TestSanitizeFileNameKeepsExtensionWhenTruncating(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("a", 150) + ".html")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if len(got) != 100 || !strings.HasSuffix(got, ".html") {
		t.Fatalf("unexpected truncation %q", got)
	}
}
