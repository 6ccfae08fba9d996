package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (types.Credential, error) {
	var out loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", types.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return types.Credential{}, err
	}
	if out.Token == "" {
		return types.Credential{}, &types.RemoteError{Op: "login", Status: http.StatusOK, Message: "respuesta sin token"}
	}
	return types.Credential{Token: out.Token, Email: email, ExpiresAt: out.ExpiresAt}, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, account types.Registration) error {
	return c.do(ctx, "register", http.MethodPost, "/auth/register", account, nil)
}
