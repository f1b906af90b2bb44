// Package textlimit validates user-supplied text against grapheme-aware length limits.
package textlimit

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"Murmur/internal/core/apperr"
)

const (
	// MaxCommentGraphemes bounds comment and reply text
	MaxCommentGraphemes = 10000
	// MaxCaptionGraphemes bounds post captions
	MaxCaptionGraphemes = 2200
	// MaxStoryGraphemes bounds story text
	MaxStoryGraphemes = 500
)

// Required trims s and checks it is non-empty and at most max grapheme clusters long.
// The trimmed text is returned so callers store what was validated.
func Required(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Invalid(field, "is required")
	}
	return s, checkLength(field, s, max)
}

// Optional is Required without the non-empty check
func Optional(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	return s, checkLength(field, s, max)
}

func checkLength(field, s string, max int) error {
	if n := uniseg.GraphemeClusterCount(s); n > max {
		return apperr.Invalid(field, fmt.Sprintf("exceeds %d graphemes (got %d)", max, n))
	}
	return nil
}
