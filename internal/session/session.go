// Package session keeps the signed-in user's bearer credential. The
// credential lives in a YAML file so separate CLI invocations share it; an
// expired or missing credential makes ValidateToken fail and signals logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rentals/internal/atomicfile"
	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Manager implements types.Session over a credential file.
type Manager struct {
	path   string
	auth   types.Authenticator
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	cred      types.Credential
	listeners map[int]func()
	nextID    int
}

var _ types.Session = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Open loads the credential stored at path, if any. auth performs the remote
// login and signup calls and may be set later with SetAuthenticator.
func Open(path string, auth types.Authenticator, opts ...Option) (*Manager, error) {
	m := &Manager{
		path:      path,
		auth:      auth,
		now:       time.Now,
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := yaml.Unmarshal(data, &m.cred); err != nil {
		m.logger.Warn("discarding unreadable session file", "path", path, "error", err)
		m.cred = types.Credential{}
	}
	return m, nil
}

// SetAuthenticator replaces the remote account client.
func (m *Manager) SetAuthenticator(auth types.Authenticator) {
	m.mu.Lock()
	m.auth = auth
	m.mu.Unlock()
}

// ValidateToken reports whether the credential is present and unexpired.
// An expired credential is removed and logout listeners run.
func (m *Manager) ValidateToken() bool {
	m.mu.Lock()
	if m.cred.Usable(m.now()) {
		m.mu.Unlock()
		return true
	}
	had := m.cred.Token != ""
	m.mu.Unlock()

	if had {
		m.logger.Info("session expired")
		if err := m.Logout(); err != nil {
			m.logger.Warn("clearing expired session", "error", err)
		}
	}
	return false
}

// Token returns the bearer token while it is usable, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cred.Usable(m.now()) {
		return ""
	}
	return m.cred.Token
}

// Credential returns the stored credential and whether one exists.
func (m *Manager) Credential() (types.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, m.cred.Token != ""
}

// Login validates the form, signs in and stores the credential.
func (m *Manager) Login(ctx context.Context, email, password string) (types.Credential, error) {
	if err := validate.Login(email, password); err != nil {
		return types.Credential{}, err
	}
	auth, err := m.authenticator()
	if err != nil {
		return types.Credential{}, err
	}
	cred, err := auth.Login(ctx, email, password)
	if err != nil {
		return types.Credential{}, fmt.Errorf("logging in: %w", err)
	}
	if err := m.store(cred); err != nil {
		return types.Credential{}, err
	}
	m.logger.Info("logged in", "email", cred.Email, "expires_at", cred.ExpiresAt)
	return cred, nil
}

// Register validates the signup form and creates the account. The user must
// log in afterwards.
func (m *Manager) Register(ctx context.Context, fullName, email, password, confirm string) error {
	if err := validate.Signup(fullName, email, password, confirm); err != nil {
		return err
	}
	auth, err := m.authenticator()
	if err != nil {
		return err
	}
	if err := auth.Register(ctx, types.Registration{FullName: fullName, Email: email, Password: password}); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	m.logger.Info("registered", "email", email)
	return nil
}

// Logout forgets the credential, removes the session file and runs the
// logout listeners. Logging out without a session is not an error.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.cred = types.Credential{}
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	err := os.Remove(m.path)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	for _, fn := range fns {
		fn()
	}
	if err != nil {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// OnLogout registers fn to run on every logout, explicit or by expiry.
func (m *Manager) OnLogout(fn func()) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) authenticator() (types.Authenticator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		return nil, errors.New("session: no authenticator configured")
	}
	return m.auth, nil
}

func (m *Manager) store(cred types.Credential) error {
	data, err := yaml.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := atomicfile.Write(m.path, data, 0o600); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()
	return nil
}
