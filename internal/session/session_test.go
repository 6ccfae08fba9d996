package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

type fakeAuth struct {
	cred       types.Credential
	err        error
	logins     int
	registered []types.Registration
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (types.Credential, error) {
	f.logins++
	if f.err != nil {
		return types.Credential{}, f.err
	}
	c := f.cred
	c.Email = email
	return c, nil
}

func (f *fakeAuth) Register(_ context.Context, r types.Registration) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, r)
	return nil
}

var now = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func openTemp(t *testing.T, auth types.Authenticator, clock *time.Time) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg", "session.yaml")
	m, err := Open(path, auth, WithClock(func() time.Time { return *clock }))
	require.NoError(t, err)
	return m, path
}

func TestNoSession(t *testing.T) {
	clock := now
	m, _ := openTemp(t, &fakeAuth{}, &clock)

	logouts := 0
	m.OnLogout(func() { logouts++ })

	assert.False(t, m.ValidateToken())
	assert.Empty(t, m.Token())
	assert.Zero(t, logouts, "no logout signal without a credential")
}

func TestLoginPersistsCredential(t *testing.T) {
	clock := now
	auth := &fakeAuth{cred: types.Credential{Token: "abc", ExpiresAt: now.Add(8 * time.Hour)}}
	m, path := openTemp(t, auth, &clock)

	cred, err := m.Login(context.Background(), "ana@example.com", "Secreta1!")
	require.NoError(t, err)
	assert.Equal(t, "abc", cred.Token)
	assert.True(t, m.ValidateToken())
	assert.Equal(t, "abc", m.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path, nil, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	got, ok := reopened.Credential()
	require.True(t, ok)
	assert.Equal(t, "abc", got.Token)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.True(t, got.ExpiresAt.Equal(now.Add(8*time.Hour)))
}

func TestLoginValidatesBeforeCalling(t *testing.T) {
	clock := now
	auth := &fakeAuth{}
	m, _ := openTemp(t, auth, &clock)

	_, err := m.Login(context.Background(), "not-an-email", "x")
	assert.ErrorIs(t, err, types.ErrInvalidFormat)

	_, err = m.Login(context.Background(), "ana@example.com", "")
	assert.ErrorIs(t, err, types.ErrMissingField)
	assert.Zero(t, auth.logins)
}

func TestLoginRemoteFailure(t *testing.T) {
	clock := now
	auth := &fakeAuth{err: &types.RemoteError{Op: "login", Status: 401, Message: "Credenciales inválidas"}}
	m, path := openTemp(t, auth, &clock)

	_, err := m.Login(context.Background(), "ana@example.com", "Secreta1!")
	require.ErrorIs(t, err, types.ErrRemoteFailure)
	assert.Equal(t, "Credenciales inválidas", types.RemoteMessage(err, ""))
	assert.NoFileExists(t, path)
}

func TestExpiryInvalidatesAndSignalsLogout(t *testing.T) {
	clock := now
	auth := &fakeAuth{cred: types.Credential{Token: "abc", ExpiresAt: now.Add(time.Hour)}}
	m, path := openTemp(t, auth, &clock)
	_, err := m.Login(context.Background(), "ana@example.com", "Secreta1!")
	require.NoError(t, err)

	logouts := 0
	m.OnLogout(func() { logouts++ })

	clock = now.Add(time.Hour)
	assert.False(t, m.ValidateToken())
	assert.Equal(t, 1, logouts)
	assert.NoFileExists(t, path)
	_, ok := m.Credential()
	assert.False(t, ok)

	assert.False(t, m.ValidateToken())
	assert.Equal(t, 1, logouts, "logout signals once")
}

func TestLogout(t *testing.T) {
	clock := now
	auth := &fakeAuth{cred: types.Credential{Token: "abc"}}
	m, path := openTemp(t, auth, &clock)
	_, err := m.Login(context.Background(), "ana@example.com", "Secreta1!")
	require.NoError(t, err)

	logouts := 0
	cancel := m.OnLogout(func() { logouts++ })
	require.NoError(t, m.Logout())
	assert.Equal(t, 1, logouts)
	assert.NoFileExists(t, path)
	assert.False(t, m.ValidateToken())

	cancel()
	require.NoError(t, m.Logout(), "logout without a session is fine")
	assert.Equal(t, 1, logouts)
}

func TestCorruptSessionFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	m, err := Open(path, nil)
	require.NoError(t, err)
	assert.False(t, m.ValidateToken())
}

func TestRegister(t *testing.T) {
	clock := now
	auth := &fakeAuth{}
	m, _ := openTemp(t, auth, &clock)

	err := m.Register(context.Background(), "Ana Pérez", "ana@example.com", "Secreta1!", "Secreta1!")
	require.NoError(t, err)
	require.Len(t, auth.registered, 1)
	assert.Equal(t, types.Registration{FullName: "Ana Pérez", Email: "ana@example.com", Password: "Secreta1!"}, auth.registered[0])

	err = m.Register(context.Background(), "Ana Pérez", "ana@example.com", "Secreta1!", "Secreta2!")
	assert.ErrorIs(t, err, types.ErrPasswordMismatch)

	err = m.Register(context.Background(), "Ana Pérez", "ana@example.com", "debil", "debil")
	assert.ErrorIs(t, err, types.ErrWeakPassword)
	assert.Len(t, auth.registered, 1)
}

func TestNoAuthenticator(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "s.yaml"), nil)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "ana@example.com", "Secreta1!")
	assert.Error(t, err)

	m.SetAuthenticator(&fakeAuth{cred: types.Credential{Token: "t"}})
	_, err = m.Login(context.Background(), "ana@example.com", "Secreta1!")
	assert.NoError(t, err)
}
