package sqlite

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// User is an account of the reference server. PasswordHash is opaque to
// the backend.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new account. Emails are compared case-insensitively.
func (b *Backend) CreateUser(fullName, email, passwordHash string) (User, error) {
	u := User{
		ID:           generateUUID(),
		FullName:     strings.TrimSpace(fullName),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    b.now().UTC(),
	}
	err := b.write(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, u.Email).Scan(&n); err != nil {
			return fmt.Errorf("checking email: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%s: %w", u.Email, ErrEmailTaken)
		}
		if _, err := tx.Exec(
			`INSERT INTO users (user_id, full_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.FullName, u.Email, u.PasswordHash, u.CreatedAt.Format(timeLayout),
		); err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}
		return nil
	}, "users")
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByEmail returns the account for email or ErrNotFound.
func (b *Backend) UserByEmail(email string) (User, error) {
	var u User
	err := b.read(func(db *sql.DB) error {
		var created string
		err := db.QueryRow(
			`SELECT user_id, full_name, email, password_hash, created_at FROM users WHERE email = ?`,
			normalizeEmail(email),
		).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &created)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", email, types.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(timeLayout, created)
		return nil
	})
	return u, err
}

// IssueToken creates a bearer token for userID valid for ttl, or for the
// configured token TTL when ttl is zero.
func (b *Backend) IssueToken(userID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = b.Config().EffectiveTokenTTL()
	}
	token := rand.Text()
	now := b.now().UTC()
	expires := now.Add(ttl)
	err := b.write(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO tokens (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
			token, userID, expires.Format(timeLayout), now.Format(timeLayout),
		); err != nil {
			return fmt.Errorf("inserting token: %w", err)
		}
		return nil
	}, "tokens")
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// TokenUser returns the user id owning token. Unknown and expired tokens
// return ErrInvalidToken.
func (b *Backend) TokenUser(token string) (string, error) {
	var userID string
	err := b.read(func(db *sql.DB) error {
		var expires string
		err := db.QueryRow(`SELECT user_id, expires_at FROM tokens WHERE token = ?`, token).Scan(&userID, &expires)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		exp, err := time.Parse(timeLayout, expires)
		if err != nil || !b.now().Before(exp) {
			return ErrInvalidToken
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// PurgeExpiredTokens deletes tokens past their expiry.
func (b *Backend) PurgeExpiredTokens() (int64, error) {
	var n int64
	err := b.write(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM tokens WHERE expires_at <= ?`, b.timestamp())
		if err != nil {
			return fmt.Errorf("purging tokens: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	}, "tokens")
	return n, err
}
