package types

import "context"

// Session is the authentication collaborator. The console core only asks
// whether the session is usable and which bearer credential to send; it
// never constructs or tears one down itself.
type Session interface {
	// ValidateToken reports whether the current credential is usable. When it
	// is not, the implementation invalidates it and signals logout.
	ValidateToken() bool

	// Token returns the bearer credential, or "" when there is none.
	Token() string
}

// Authenticator exposes the remote account operations behind a Session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Credential, error)
	Register(ctx context.Context, account Registration) error
}

// Registration is the body of a signup request.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
