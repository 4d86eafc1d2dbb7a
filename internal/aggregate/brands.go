package aggregate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxBrandLen     = 40
	minFreeBrandLen = 2
	maxFreeBrandLen = 34
)

var invalidBrandNames = map[string]bool{
	"none":            true,
	"n/a":             true,
	"na":              true,
	"null":            true,
	"undefined":       true,
	"other":           true,
	"none explicitly": true,
	"none mentioned":  true,
}

var (
	brandSplitRe    = regexp.MustCompile(`[;,]`)
	trailingParenRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// IsInvalidBrand reports whether a token is a placeholder, not a brand
func IsInvalidBrand(name string) bool {
	if name == "" {
		return true
	}
	if invalidBrandNames[strings.ToLower(strings.TrimSpace(name))] {
		return true
	}
	return utf8.RuneCountInString(name) > maxBrandLen
}

// Canonicalizer maps free-form brand tokens onto the canonical competitor list
type Canonicalizer struct {
	canonical map[string]string // lower-trimmed -> list casing
}

// NewCanonicalizer builds a canonicalizer; the first entry wins on case collisions
func NewCanonicalizer(validCompetitors []string) *Canonicalizer {
	c := &Canonicalizer{canonical: make(map[string]string, len(validCompetitors))}
	for _, vc := range validCompetitors {
		key := strings.ToLower(strings.TrimSpace(vc))
		if key == "" {
			continue
		}
		if _, exists := c.canonical[key]; !exists {
			c.canonical[key] = vc
		}
	}
	return c
}

// Canonicalize returns the canonical form of token and whether it is kept
func (c *Canonicalizer) Canonicalize(token string) (string, bool) {
	if IsInvalidBrand(token) {
		return "", false
	}

	if vc, ok := c.canonical[strings.ToLower(strings.TrimSpace(token))]; ok {
		return vc, true
	}

	n := utf8.RuneCountInString(token)
	if n < minFreeBrandLen || n > maxFreeBrandLen {
		return "", false
	}
	return titleCase(token), true
}

// ExtractBrands splits a competitors_mentioned string into canonical brand
// names, in order of appearance, without duplicates
func (c *Canonicalizer) ExtractBrands(mentioned string) []string {
	if mentioned == "" {
		return nil
	}

	var brands []string
	seen := make(map[string]bool)
	for _, part := range brandSplitRe.Split(mentioned, -1) {
		part = strings.TrimSpace(part)
		part = strings.TrimSpace(trailingParenRe.ReplaceAllString(part, ""))

		brand, ok := c.Canonicalize(part)
		if !ok || seen[brand] {
			continue
		}
		seen[brand] = true
		brands = append(brands, brand)
	}
	return brands
}

// titleCase upper-cases the first letter of every word and lower-cases the rest
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if prevLetter {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return sb.String()
}

// DisplayName upper-cases the first character and leaves the rest unchanged
func DisplayName(brand string) string {
	r, size := utf8.DecodeRuneInString(brand)
	if r == utf8.RuneError {
		return brand
	}
	return string(unicode.ToUpper(r)) + brand[size:]
}
