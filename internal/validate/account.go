package validate

import (
	"strings"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Signup validates a registration form in the order the form reports
// problems: name, email, password strength, confirmation.
func Signup(fullName, email, password, confirm string) error {
	if err := RequiredText("full_name", fullName, 0); err != nil {
		return err
	}
	if err := EmailShape(email); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	if password != confirm {
		return types.NewFieldError("confirm_password", types.ErrPasswordMismatch, "passwords do not match")
	}
	return nil
}

// Login validates a login form. Strength is not checked here; accounts
// created under older rules must still be able to sign in.
func Login(email, password string) error {
	if err := EmailShape(email); err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return types.NewFieldError("password", types.ErrMissingField, "password is required")
	}
	return nil
}
