// Package validate holds the field-level and cross-field checks the console
// runs before any request leaves the process. Every function is pure and
// returns nil on success or a *types.FieldError wrapping one of the
// validation sentinels.
package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Password length bounds, in runes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 64
)

// SpecialChars is the set of characters that satisfy the special-character
// facet of password strength.
const SpecialChars = "@$!%*?&"

// RequiredText fails with ErrMissingField when value is empty or only
// whitespace, and with ErrTooLong when it exceeds maxLen runes. A maxLen of
// zero disables the length check.
func RequiredText(field, value string, maxLen int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return types.NewFieldError(field, types.ErrMissingField, field+" is required")
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return types.NewFieldError(field, types.ErrTooLong,
			fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return nil
}

// EmailShape accepts local@domain.tld: exactly one '@', a non-empty local
// part, and a domain with at least one '.' and no empty labels.
func EmailShape(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.NewFieldError("email", types.ErrMissingField, "email is required")
	}
	invalid := types.NewFieldError("email", types.ErrInvalidFormat, "email must look like user@domain.tld")
	if strings.ContainsFunc(s, unicode.IsSpace) || strings.Count(s, "@") != 1 {
		return invalid
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || !strings.Contains(domain, ".") {
		return invalid
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return invalid
		}
	}
	return nil
}

// DateRange checks that both bounds are present and that end is not before
// start. Missing bounds are reported first.
func DateRange(start, end types.Date) error {
	if start.IsZero() {
		return types.NewFieldError("start_date", types.ErrMissingField, "start date is required")
	}
	if end.IsZero() {
		return types.NewFieldError("end_date", types.ErrMissingField, "end date is required")
	}
	if end.Before(start) {
		return types.NewFieldError("end_date", types.ErrInvalidDateRange,
			fmt.Sprintf("end date %s is before start date %s", end, start))
	}
	return nil
}
