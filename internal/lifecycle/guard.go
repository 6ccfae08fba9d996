package lifecycle

import (
	"log/slog"
	"sync/atomic"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// submitGuard admits one mutating operation at a time per form.
type submitGuard struct {
	busy atomic.Bool
}

// acquire returns ErrSubmitInProgress when another submission holds the
// guard. On success the caller must call release.
func (g *submitGuard) acquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return types.ErrSubmitInProgress
	}
	return nil
}

func (g *submitGuard) release() { g.busy.Store(false) }

// Outcome reports which removal branch ran.
type Outcome string

const (
	OutcomeDeactivated Outcome = "deactivated"
	OutcomeEliminated  Outcome = "eliminated"
)

// RemovalPlan describes a removal before it runs, so the caller can ask for
// confirmation with text that names the branch.
type RemovalPlan struct {
	Outcome Outcome
	Verb    string // "desactivar" or "eliminar"
	Prompt  string
}

func requireSession(s types.Session) error {
	if s == nil || !s.ValidateToken() {
		return types.ErrAuthRequired
	}
	return nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
