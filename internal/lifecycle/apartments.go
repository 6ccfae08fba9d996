package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// User-facing apartment messages.
const (
	MsgApartmentCreated     = "Apartamento creado exitosamente"
	MsgApartmentUpdated     = "Apartamento actualizado exitosamente"
	MsgApartmentActivated   = "Apartamento activado exitosamente"
	MsgApartmentDeactivated = "Apartamento desactivado exitosamente"
	MsgApartmentEliminated  = "Apartamento eliminado exitosamente"

	MsgApartmentLoadFailed   = "Error al cargar los apartamentos"
	MsgApartmentSaveFailed   = "Error al guardar el apartamento"
	MsgApartmentStatusFailed = "Error al actualizar estado del apartamento"
	MsgApartmentRemoveFailed = "Error al procesar el apartamento"
)

// Apartments runs the apartment workflows against a transport and keeps the
// apartment store in sync.
type Apartments struct {
	transport types.ApartmentTransport
	session   types.Session
	store     *store.Store[types.Apartment]
	logger    *slog.Logger
	guard     submitGuard
}

// NewApartments wires the apartment lifecycle. A nil logger discards output.
func NewApartments(transport types.ApartmentTransport, session types.Session, st *store.Store[types.Apartment], logger *slog.Logger) *Apartments {
	return &Apartments{
		transport: transport,
		session:   session,
		store:     st,
		logger:    orDiscard(logger).With("resource", "apartment"),
	}
}

// NewApartmentStore returns a store keyed by apartment id.
func NewApartmentStore(opts ...store.Option) *store.Store[types.Apartment] {
	return store.New(func(a types.Apartment) types.ID { return a.ID }, opts...)
}

// Store returns the apartment store.
func (l *Apartments) Store() *store.Store[types.Apartment] { return l.store }

// Reload fetches the apartment list and replaces the store contents. A
// response that arrives after a newer reload started is discarded.
func (l *Apartments) Reload(ctx context.Context) error {
	ticket := l.store.BeginLoad()
	items, err := l.transport.ListApartments(ctx)
	if err != nil {
		if l.store.FailLoad(ticket) {
			l.store.ShowBanner(store.BannerError, types.RemoteMessage(err, MsgApartmentLoadFailed))
		}
		l.logger.Warn("list failed", "error", err)
		return fmt.Errorf("loading apartments: %w", err)
	}
	l.store.CommitLoad(ticket, items)
	return nil
}

// Create validates fields, creates the apartment, reloads the store so the
// derived fields come from the server, and marks the new apartment.
func (l *Apartments) Create(ctx context.Context, fields types.ApartmentFields) (types.Apartment, error) {
	if err := l.guard.acquire(); err != nil {
		return types.Apartment{}, err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return types.Apartment{}, err
	}
	if fields.Status == "" {
		fields.Status = types.ApartmentStatusActive
	}
	if err := validateApartment(fields); err != nil {
		return types.Apartment{}, err
	}

	created, err := l.transport.CreateApartment(ctx, fields)
	if err != nil {
		l.fail("create failed", MsgApartmentSaveFailed, err)
		return types.Apartment{}, fmt.Errorf("creating apartment: %w", err)
	}
	l.logger.Info("created", "id", created.ID, "number", created.Number)
	return l.settle(ctx, created, MsgApartmentCreated)
}

// Update validates fields and saves them for apartment id. An empty status
// keeps the apartment's current one.
func (l *Apartments) Update(ctx context.Context, id types.ID, fields types.ApartmentFields) (types.Apartment, error) {
	if err := l.guard.acquire(); err != nil {
		return types.Apartment{}, err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return types.Apartment{}, err
	}
	if fields.Status == "" {
		fields.Status = types.ApartmentStatusActive
		if current, ok := l.store.Find(id); ok {
			fields.Status = current.Status
		}
	}
	if err := validateApartment(fields); err != nil {
		return types.Apartment{}, err
	}

	updated, err := l.transport.UpdateApartment(ctx, id, fields)
	if err != nil {
		l.fail("update failed", MsgApartmentSaveFailed, err)
		return types.Apartment{}, fmt.Errorf("updating apartment %s: %w", id, err)
	}
	if updated.ID.IsZero() {
		updated.ID = id
	}
	l.logger.Info("updated", "id", updated.ID)
	return l.settle(ctx, updated, MsgApartmentUpdated)
}

// ToggleStatus flips the status of apartment id. The flip changes no other
// apartment, so the store is patched in place instead of reloaded. It
// returns the new status.
func (l *Apartments) ToggleStatus(ctx context.Context, id types.ID, current string) (string, error) {
	if err := l.guard.acquire(); err != nil {
		return "", err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return "", err
	}
	next := types.FlipStatus(current)
	if _, err := l.transport.SetApartmentStatus(ctx, id, next); err != nil {
		l.fail("status change failed", MsgApartmentStatusFailed, err)
		return "", fmt.Errorf("setting apartment %s status: %w", id, err)
	}

	l.store.PatchOne(id, func(a types.Apartment) types.Apartment {
		a.Status = next
		return a
	})
	l.store.MarkRecentlyUpdated(id)
	msg := MsgApartmentDeactivated
	if next == types.ApartmentStatusActive {
		msg = MsgApartmentActivated
	}
	l.store.ShowBanner(store.BannerSuccess, msg)
	l.logger.Info("status changed", "id", id, "status", next)
	return next, nil
}

// RemovalPlan returns the branch RemoveOrDeactivate takes for an apartment
// with contractsCount contracts, with the confirmation prompt for it.
func (l *Apartments) RemovalPlan(contractsCount int) RemovalPlan {
	return ApartmentRemovalPlan(contractsCount)
}

// ApartmentRemovalPlan is RemovalPlan without a lifecycle.
func ApartmentRemovalPlan(contractsCount int) RemovalPlan {
	if contractsCount > 0 {
		return RemovalPlan{
			Outcome: OutcomeDeactivated,
			Verb:    "desactivar",
			Prompt:  fmt.Sprintf("El apartamento tiene %d contrato(s) asociado(s) y no se puede eliminar. ¿Deseas desactivarlo?", contractsCount),
		}
	}
	return RemovalPlan{
		Outcome: OutcomeEliminated,
		Verb:    "eliminar",
		Prompt:  "¿Estás seguro de eliminar el apartamento? Esta acción no se puede deshacer.",
	}
}

// RemoveOrDeactivate removes apartment id. An apartment with contracts is
// deactivated; one without is hard-deleted. The caller must have confirmed
// the branch named by RemovalPlan.
func (l *Apartments) RemoveOrDeactivate(ctx context.Context, id types.ID, contractsCount int) (Outcome, error) {
	if err := l.guard.acquire(); err != nil {
		return "", err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return "", err
	}
	plan := ApartmentRemovalPlan(contractsCount)
	var err error
	if plan.Outcome == OutcomeDeactivated {
		err = l.transport.DeactivateApartment(ctx, id)
	} else {
		err = l.transport.DeleteApartment(ctx, id)
	}
	if err != nil {
		l.fail("removal failed", MsgApartmentRemoveFailed, err)
		return "", fmt.Errorf("removing apartment %s: %w", id, err)
	}
	l.logger.Info("removed", "id", id, "outcome", plan.Outcome)

	if err := l.Reload(ctx); err != nil {
		return plan.Outcome, err
	}
	msg := MsgApartmentEliminated
	if plan.Outcome == OutcomeDeactivated {
		msg = MsgApartmentDeactivated
		l.store.MarkRecentlyUpdated(id)
	}
	l.store.ShowBanner(store.BannerSuccess, msg)
	return plan.Outcome, nil
}

// settle reloads the store after a successful save, marks the saved
// apartment and shows msg. It returns the reloaded apartment when present.
func (l *Apartments) settle(ctx context.Context, saved types.Apartment, msg string) (types.Apartment, error) {
	if err := l.Reload(ctx); err != nil {
		return saved, err
	}
	if fresh, ok := l.store.Find(saved.ID); ok {
		saved = fresh
	}
	l.store.MarkRecentlyUpdated(saved.ID)
	l.store.ShowBanner(store.BannerSuccess, msg)
	return saved, nil
}

func (l *Apartments) fail(event, fallback string, err error) {
	l.logger.Warn(event, "error", err)
	l.store.ShowBanner(store.BannerError, types.RemoteMessage(err, fallback))
}

func validateApartment(f types.ApartmentFields) error {
	if err := validate.RequiredText("number", f.Number, types.MaxApartmentNumberLen); err != nil {
		return err
	}
	if err := validate.RequiredText("level", f.Level, types.MaxApartmentLevelLen); err != nil {
		return err
	}
	if !types.ValidApartmentStatus(f.Status) {
		return types.NewFieldError("status", types.ErrInvalidStatus, fmt.Sprintf("%q is not active or inactive", f.Status))
	}
	return nil
}
