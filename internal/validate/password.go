package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// PasswordStrength reports each strength facet independently so a form can
// show which requirements are already met.
type PasswordStrength struct {
	ValidLength  bool
	HasUppercase bool
	HasNumber    bool
	HasSpecial   bool
}

// Valid reports whether every facet is satisfied.
func (p PasswordStrength) Valid() bool {
	return p.ValidLength && p.HasUppercase && p.HasNumber && p.HasSpecial
}

// Unmet lists the human-readable names of the facets that are not satisfied,
// in a fixed order.
func (p PasswordStrength) Unmet() []string {
	var out []string
	if !p.ValidLength {
		out = append(out, "between 8 and 64 characters")
	}
	if !p.HasUppercase {
		out = append(out, "an uppercase letter")
	}
	if !p.HasNumber {
		out = append(out, "a number")
	}
	if !p.HasSpecial {
		out = append(out, "a special character ("+SpecialChars+")")
	}
	return out
}

// CheckPasswordStrength computes the strength facets of s.
func CheckPasswordStrength(s string) PasswordStrength {
	n := utf8.RuneCountInString(s)
	return PasswordStrength{
		ValidLength:  n >= MinPasswordLen && n <= MaxPasswordLen,
		HasUppercase: strings.IndexFunc(s, unicode.IsUpper) >= 0,
		HasNumber:    strings.IndexFunc(s, unicode.IsDigit) >= 0,
		HasSpecial:   strings.ContainsAny(s, SpecialChars),
	}
}

// ValidatePasswordStrength fails with ErrWeakPassword naming every unmet facet.
func ValidatePasswordStrength(s string) error {
	strength := CheckPasswordStrength(s)
	if strength.Valid() {
		return nil
	}
	return types.NewFieldError("password", types.ErrWeakPassword,
		"password needs "+strings.Join(strength.Unmet(), ", "))
}
