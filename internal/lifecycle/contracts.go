package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// User-facing contract messages.
const (
	MsgContractCreated     = "Contrato creado exitosamente"
	MsgContractUpdated     = "Contrato actualizado exitosamente"
	MsgContractDeactivated = "Contrato desactivado exitosamente"
	MsgContractEliminated  = "Contrato eliminado exitosamente"

	MsgContractLoadFailed   = "Error al cargar contratos o apartamentos"
	MsgContractSaveFailed   = "Error al guardar el contrato"
	MsgContractRemoveFailed = "Error al procesar contrato"

	PromptContractDeactivate = "El contrato tiene un apartamento asignado. ¿Deseas desactivarlo?"
	PromptContractDelete     = "¿Estás seguro de eliminar el contrato? Esta acción no se puede deshacer."
)

// Contracts runs the contract workflows. It owns the contract store and
// reloads the apartment store through the apartment lifecycle whenever a
// contract change can move apartment occupancy.
type Contracts struct {
	transport  types.ContractTransport
	session    types.Session
	store      *store.Store[types.Contract]
	apartments *Apartments
	logger     *slog.Logger
	guard      submitGuard
}

// NewContracts wires the contract lifecycle. A nil logger discards output.
func NewContracts(transport types.ContractTransport, session types.Session, st *store.Store[types.Contract], apartments *Apartments, logger *slog.Logger) *Contracts {
	return &Contracts{
		transport:  transport,
		session:    session,
		store:      st,
		apartments: apartments,
		logger:     orDiscard(logger).With("resource", "contract"),
	}
}

// NewContractStore returns a store keyed by contract id.
func NewContractStore(opts ...store.Option) *store.Store[types.Contract] {
	return store.New(func(c types.Contract) types.ID { return c.ID }, opts...)
}

// Store returns the contract store.
func (l *Contracts) Store() *store.Store[types.Contract] { return l.store }

// Reload refreshes the contract store and the apartment store.
func (l *Contracts) Reload(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return l.reloadContracts(ctx) })
	g.Go(func() error { return l.apartments.Reload(ctx) })
	return g.Wait()
}

func (l *Contracts) reloadContracts(ctx context.Context) error {
	ticket := l.store.BeginLoad()
	items, err := l.transport.ListContracts(ctx)
	if err != nil {
		if l.store.FailLoad(ticket) {
			l.store.ShowBanner(store.BannerError, types.RemoteMessage(err, MsgContractLoadFailed))
		}
		l.logger.Warn("list failed", "error", err)
		return fmt.Errorf("loading contracts: %w", err)
	}
	l.store.CommitLoad(ticket, items)
	return nil
}

// Create validates fields, creates the contract and reloads both stores.
// Active defaults to true.
func (l *Contracts) Create(ctx context.Context, fields types.ContractFields) (types.Contract, error) {
	if err := l.guard.acquire(); err != nil {
		return types.Contract{}, err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return types.Contract{}, err
	}
	if err := validateContract(fields); err != nil {
		return types.Contract{}, err
	}
	if err := l.checkEligible(ctx, fields.ApartmentID, ""); err != nil {
		return types.Contract{}, err
	}

	payload := types.ContractPayload{
		ApartmentID: fields.ApartmentID,
		StartDate:   fields.StartDate,
		EndDate:     fields.EndDate,
		Active:      fields.ActiveOr(true),
	}
	created, err := l.transport.CreateContract(ctx, payload)
	if err != nil {
		l.fail("create failed", MsgContractSaveFailed, err)
		return types.Contract{}, fmt.Errorf("creating contract: %w", err)
	}
	l.logger.Info("created", "id", created.ID, "apartment", created.ApartmentID)
	return l.settle(ctx, created, MsgContractCreated)
}

// Update validates fields and saves them for contract id. The contract's
// current apartment stays eligible even when it is occupied by this same
// contract, but an inactive contract cannot be reactivated there while
// another contract holds it. A nil Active keeps the current flag.
func (l *Contracts) Update(ctx context.Context, id types.ID, fields types.ContractFields) (types.Contract, error) {
	if err := l.guard.acquire(); err != nil {
		return types.Contract{}, err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return types.Contract{}, err
	}
	if err := validateContract(fields); err != nil {
		return types.Contract{}, err
	}
	current, err := l.current(ctx, id)
	if err != nil {
		return types.Contract{}, err
	}
	if err := l.checkEligible(ctx, fields.ApartmentID, current.ApartmentID); err != nil {
		return types.Contract{}, err
	}
	active := fields.ActiveOr(current.Active)
	if active && !current.Active && fields.ApartmentID == current.ApartmentID {
		if a, ok := l.apartments.Store().Find(fields.ApartmentID); ok && a.HasActiveContract {
			return types.Contract{}, types.NewFieldError("id_apartment", types.ErrOccupancyConflict,
				fmt.Sprintf("apartment %s already has an active contract", fields.ApartmentID))
		}
	}

	payload := types.ContractPayload{
		ApartmentID: fields.ApartmentID,
		StartDate:   fields.StartDate,
		EndDate:     fields.EndDate,
		Active:      active,
	}
	updated, err := l.transport.UpdateContract(ctx, id, payload)
	if err != nil {
		l.fail("update failed", MsgContractSaveFailed, err)
		return types.Contract{}, fmt.Errorf("updating contract %s: %w", id, err)
	}
	if updated.ID.IsZero() {
		updated.ID = id
	}
	l.logger.Info("updated", "id", updated.ID, "apartment", payload.ApartmentID)
	return l.settle(ctx, updated, MsgContractUpdated)
}

// RemovalPlan returns the branch DeleteOrDeactivate takes for a contract.
func (l *Contracts) RemovalPlan(hasApartmentReference bool) RemovalPlan {
	return ContractRemovalPlan(hasApartmentReference)
}

// ContractRemovalPlan is RemovalPlan without a lifecycle.
func ContractRemovalPlan(hasApartmentReference bool) RemovalPlan {
	if hasApartmentReference {
		return RemovalPlan{Outcome: OutcomeDeactivated, Verb: "desactivar", Prompt: PromptContractDeactivate}
	}
	return RemovalPlan{Outcome: OutcomeEliminated, Verb: "eliminar", Prompt: PromptContractDelete}
}

// DeleteOrDeactivate removes contract id. A contract that references an
// apartment is deactivated and both stores are reloaded, since the
// apartment's occupancy changes. A contract without one is hard-deleted and
// dropped from the contract store; the apartment store is left alone.
func (l *Contracts) DeleteOrDeactivate(ctx context.Context, id types.ID, hasApartmentReference bool) (Outcome, error) {
	if err := l.guard.acquire(); err != nil {
		return "", err
	}
	defer l.guard.release()

	if err := requireSession(l.session); err != nil {
		return "", err
	}
	plan := ContractRemovalPlan(hasApartmentReference)
	if plan.Outcome == OutcomeEliminated {
		if err := l.transport.DeleteContract(ctx, id); err != nil {
			l.fail("delete failed", MsgContractRemoveFailed, err)
			return "", fmt.Errorf("deleting contract %s: %w", id, err)
		}
		l.store.Remove(id)
		l.store.ShowBanner(store.BannerSuccess, MsgContractEliminated)
		l.logger.Info("removed", "id", id, "outcome", plan.Outcome)
		return plan.Outcome, nil
	}

	if err := l.transport.DeactivateContract(ctx, id); err != nil {
		l.fail("deactivate failed", MsgContractRemoveFailed, err)
		return "", fmt.Errorf("deactivating contract %s: %w", id, err)
	}
	l.logger.Info("removed", "id", id, "outcome", plan.Outcome)
	if err := l.Reload(ctx); err != nil {
		return plan.Outcome, err
	}
	l.store.MarkRecentlyUpdated(id)
	l.store.ShowBanner(store.BannerSuccess, MsgContractDeactivated)
	return plan.Outcome, nil
}

// EligibleApartments returns the apartments a contract may be assigned to:
// active ones without an active contract, plus currentApartmentID whatever
// its state. Server order is preserved.
func EligibleApartments(all []types.Apartment, currentApartmentID types.ID) []types.Apartment {
	var out []types.Apartment
	for _, a := range all {
		if (a.IsActive() && !a.HasActiveContract) || (!currentApartmentID.IsZero() && a.ID == currentApartmentID) {
			out = append(out, a)
		}
	}
	return out
}

// EligibleApartments filters the apartment store for a contract whose
// current apartment is currentApartmentID ("" for a new contract).
func (l *Contracts) EligibleApartments(currentApartmentID types.ID) []types.Apartment {
	return EligibleApartments(l.apartments.Store().Items(), currentApartmentID)
}

func validateContract(fields types.ContractFields) error {
	if fields.ApartmentID.IsZero() {
		return types.NewFieldError("id_apartment", types.ErrMissingField, "select an apartment")
	}
	return validate.DateRange(fields.StartDate, fields.EndDate)
}

// checkEligible fails with ErrOccupancyConflict unless apartmentID is
// eligible. The apartment store is loaded first when empty so eligibility is
// judged against server data.
func (l *Contracts) checkEligible(ctx context.Context, apartmentID, currentApartmentID types.ID) error {
	if !l.apartments.Store().Loaded() {
		if err := l.apartments.Reload(ctx); err != nil {
			return err
		}
	}
	for _, a := range l.EligibleApartments(currentApartmentID) {
		if a.ID == apartmentID {
			return nil
		}
	}
	return types.NewFieldError("id_apartment", types.ErrOccupancyConflict,
		fmt.Sprintf("apartment %s is inactive or already has an active contract", apartmentID))
}

// current returns contract id from the store, or from the server when the
// store does not hold it.
func (l *Contracts) current(ctx context.Context, id types.ID) (types.Contract, error) {
	if c, ok := l.store.Find(id); ok {
		return c, nil
	}
	c, err := l.transport.GetContract(ctx, id)
	if err != nil {
		l.fail("get failed", MsgContractSaveFailed, err)
		return types.Contract{}, fmt.Errorf("getting contract %s: %w", id, err)
	}
	return c, nil
}

func (l *Contracts) settle(ctx context.Context, saved types.Contract, msg string) (types.Contract, error) {
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

func (l *Contracts) fail(event, fallback string, err error) {
	l.logger.Warn(event, "error", err)
	l.store.ShowBanner(store.BannerError, types.RemoteMessage(err, fallback))
}
