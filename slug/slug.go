// Package slug produces URL- and filename-safe identifiers. It also backs
// tag normalization: stored tags are slugs of their source phrases.
package slug

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 100

var (
	nonAlnum    = regexp.MustCompile("[^a-z0-9-]+")
	multiHyphen = regexp.MustCompile("-+")
)

// Generate creates a slug from a string.
func Generate(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = transliterate(s)

	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	s = nonAlnum.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}

	return s
}

// FromURL derives a slug from an article URL, combining hostname and path so
// that snapshots from different sites cannot collide on a path like /index.
func FromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return Generate(rawURL)
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	path := strings.Trim(parsed.EscapedPath(), "/")
	if path == "" {
		return Generate(host)
	}
	return Generate(host + "-" + strings.ReplaceAll(path, "/", "-"))
}

// transliterate converts unicode characters to ASCII equivalents by
// stripping combining marks after NFD decomposition.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
