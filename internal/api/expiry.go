package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Expirer is the part of the backend the expiry job needs.
type Expirer interface {
	ExpireContracts(today types.Date) (int64, error)
	PurgeExpiredTokens() (int64, error)
}

// RunExpiry deactivates contracts that ended before today and purges
// expired tokens.
func RunExpiry(e Expirer, today types.Date, logger *slog.Logger) error {
	contracts, err := e.ExpireContracts(today)
	if err != nil {
		return fmt.Errorf("expiring contracts: %w", err)
	}
	tokens, err := e.PurgeExpiredTokens()
	if err != nil {
		return fmt.Errorf("purging tokens: %w", err)
	}
	logger.Info("expiry run", "today", today.String(), "contracts", contracts, "tokens", tokens)
	return nil
}

// StartExpiryJob schedules RunExpiry on a standard five-field cron
// schedule. The returned cron is running; stop it with Stop.
func StartExpiryJob(schedule string, e Expirer, now func() time.Time, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := RunExpiry(e, types.DateOf(now()), logger); err != nil {
			logger.Error("expiry job failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing expiry schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
