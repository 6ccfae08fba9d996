package types

import "time"

// Credential is a bearer token and its expiry. A zero ExpiresAt means the
// server did not state one.
type Credential struct {
	Token     string    `json:"token" yaml:"token"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the credential is past its expiry at now.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Usable reports whether the credential has a token and has not expired.
func (c Credential) Usable(now time.Time) bool {
	return c.Token != "" && !c.Expired(now)
}
