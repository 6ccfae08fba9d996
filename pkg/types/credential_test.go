package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialUsable(t *testing.T) {
	now := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Credential{}.Usable(now), "empty token")
	assert.True(t, Credential{Token: "t"}.Usable(now), "no expiry")
	assert.True(t, Credential{Token: "t", ExpiresAt: now.Add(time.Minute)}.Usable(now))
	assert.False(t, Credential{Token: "t", ExpiresAt: now}.Usable(now), "expiry is exclusive")
	assert.False(t, Credential{Token: "t", ExpiresAt: now.Add(-time.Minute)}.Usable(now))
}
