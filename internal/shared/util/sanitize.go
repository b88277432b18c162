package util

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxFileNameRunes = 100

// ErrInvalidFileName is returned for names that are empty once cleaned.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps letters, digits, dot, dash and underscore. Anything
// else, path separators included, becomes an underscore, as does the second
// dot of a "..". Leading dots are dropped so the result is never hidden.
func SanitizeFileName(name string) (string, error) {
	var b strings.Builder
	var prev rune
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '.' && prev == '.':
			r = '_'
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
		default:
			r = '_'
		}
		b.WriteRune(r)
		prev = r
	}
	s := strings.TrimLeft(b.String(), ".")
	if utf8.RuneCountInString(s) > maxFileNameRunes {
		s = s[len(s)-maxFileNameRunes:]
	}
	if strings.Trim(s, "_.") == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
