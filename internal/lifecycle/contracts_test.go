package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

func date(m time.Month, d int) types.Date { return types.NewDate(2026, m, d) }

func boolPtr(b bool) *bool { return &b }

func ids(apts []types.Apartment) []types.ID {
	out := make([]types.ID, 0, len(apts))
	for _, a := range apts {
		out = append(out, a.ID)
	}
	return out
}

func TestEligibleApartments(t *testing.T) {
	all := []types.Apartment{
		{ID: "1", Status: types.ApartmentStatusActive},
		{ID: "2", Status: types.ApartmentStatusInactive},
		{ID: "3", Status: types.ApartmentStatusActive, HasActiveContract: true},
		{ID: "4", Status: types.ApartmentStatusActive, ContractsCount: 2},
		{ID: "5", Status: types.ApartmentStatusInactive, HasActiveContract: true},
	}

	tests := []struct {
		name    string
		current types.ID
		want    []types.ID
	}{
		{"new contract", "", []types.ID{"1", "4"}},
		{"current occupied apartment stays selectable", "3", []types.ID{"1", "3", "4"}},
		{"current inactive apartment stays selectable", "2", []types.ID{"1", "2", "4"}},
		{"current already eligible", "1", []types.ID{"1", "4"}},
		{"unknown current", "9", []types.ID{"1", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(EligibleApartments(all, tt.current)))
		})
	}
}

func TestEligibleApartmentsEmpty(t *testing.T) {
	assert.Empty(t, EligibleApartments(nil, ""))
}

func TestCreateContractReloadsBothStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	y := f.server.addApartment("102", types.ApartmentStatusActive)
	require.NoError(t, f.contracts.Reload(ctx))
	assert.Equal(t, []types.ID{x, y}, ids(f.contracts.EligibleApartments("")))

	mark := f.server.mark()
	created, err := f.contracts.Create(ctx, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.August, 31)})
	require.NoError(t, err)

	calls := f.server.callsSince(mark)
	require.NotEmpty(t, calls)
	assert.Equal(t, "CreateContract", calls[0])
	assert.Equal(t, 1, count(calls, "ListContracts"))
	assert.Equal(t, 1, count(calls, "ListApartments"))
	assert.True(t, f.server.lastCreate.Active, "active defaults to true")

	apt, ok := f.apartments.Store().Find(x)
	require.True(t, ok)
	assert.True(t, apt.HasActiveContract)
	assert.Equal(t, 1, apt.ContractsCount)
	assert.Equal(t, []types.ID{y}, ids(f.contracts.EligibleApartments("")))

	snap := f.contracts.Store().Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, created.ID, snap.RecentlyUpdated)
	assert.Equal(t, MsgContractCreated, snap.Banner.Message)

	_, err = f.contracts.Create(ctx, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.August, 31)})
	assert.ErrorIs(t, err, types.ErrOccupancyConflict)
}

func TestCreateContractExplicitInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	require.NoError(t, f.contracts.Reload(ctx))

	_, err := f.contracts.Create(ctx, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.March, 1), Active: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, f.server.lastCreate.Active)
}

func TestContractValidationNeverReachesTransport(t *testing.T) {
	tests := []struct {
		name   string
		fields types.ContractFields
		want   error
	}{
		{"no apartment", types.ContractFields{StartDate: date(time.March, 1), EndDate: date(time.April, 1)}, types.ErrMissingField},
		{"no start date", types.ContractFields{ApartmentID: "a1", EndDate: date(time.April, 1)}, types.ErrMissingField},
		{"no end date", types.ContractFields{ApartmentID: "a1", StartDate: date(time.March, 1)}, types.ErrMissingField},
		{"end before start", types.ContractFields{ApartmentID: "a1", StartDate: date(time.April, 2), EndDate: date(time.April, 1)}, types.ErrInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.contracts.Create(ctx, tt.fields)
			assert.ErrorIs(t, err, tt.want)

			_, err = f.contracts.Update(ctx, "c1", tt.fields)
			assert.ErrorIs(t, err, tt.want)

			assert.Empty(t, f.server.callsSince(0))
		})
	}
}

func TestCreateContractIneligibleApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := f.server.addApartment("101", types.ApartmentStatusInactive)
	occupied := f.server.addApartment("102", types.ApartmentStatusActive)
	f.server.addContract(occupied, true)

	for _, id := range []types.ID{inactive, occupied, "missing"} {
		_, err := f.contracts.Create(ctx, types.ContractFields{ApartmentID: id, StartDate: date(time.March, 1), EndDate: date(time.April, 1)})
		assert.ErrorIs(t, err, types.ErrOccupancyConflict, "apartment %s", id)
	}
	assert.Zero(t, count(f.server.callsSince(0), "CreateContract"))
	assert.Equal(t, 1, count(f.server.callsSince(0), "ListApartments"), "apartment store loads once when empty")
}

func TestUpdateContractKeepsOwnApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	c := f.server.addContract(x, true)
	require.NoError(t, f.contracts.Reload(ctx))
	require.NotContains(t, ids(f.contracts.EligibleApartments("")), x)

	mark := f.server.mark()
	got, err := f.contracts.Update(ctx, c, types.ContractFields{ApartmentID: x, StartDate: date(time.February, 1), EndDate: date(time.June, 30)})
	require.NoError(t, err)

	calls := f.server.callsSince(mark)
	assert.Equal(t, "UpdateContract", calls[0])
	assert.Equal(t, 1, count(calls, "ListContracts"))
	assert.Equal(t, 1, count(calls, "ListApartments"))
	assert.Equal(t, date(time.February, 1), got.StartDate)
	assert.True(t, got.Active, "nil Active keeps the current flag")
	assert.Equal(t, MsgContractUpdated, f.contracts.Store().Banner().Message)
	assert.Equal(t, c, f.contracts.Store().RecentlyUpdated())
}

func TestUpdateContractReassignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	y := f.server.addApartment("102", types.ApartmentStatusActive)
	z := f.server.addApartment("103", types.ApartmentStatusActive)
	c := f.server.addContract(x, true)
	f.server.addContract(z, true)
	require.NoError(t, f.contracts.Reload(ctx))

	_, err := f.contracts.Update(ctx, c, types.ContractFields{ApartmentID: z, StartDate: date(time.March, 1), EndDate: date(time.April, 1)})
	require.ErrorIs(t, err, types.ErrOccupancyConflict)

	_, err = f.contracts.Update(ctx, c, types.ContractFields{ApartmentID: y, StartDate: date(time.March, 1), EndDate: date(time.April, 1)})
	require.NoError(t, err)

	oldApt, _ := f.apartments.Store().Find(x)
	newApt, _ := f.apartments.Store().Find(y)
	assert.False(t, oldApt.HasActiveContract)
	assert.True(t, newApt.HasActiveContract)
	assert.Contains(t, ids(f.contracts.EligibleApartments("")), x)
}

func TestUpdateContractReactivationOnOccupiedApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	old := f.server.addContract(x, false)
	f.server.addContract(x, true)
	require.NoError(t, f.contracts.Reload(ctx))

	mark := f.server.mark()
	_, err := f.contracts.Update(ctx, old, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.April, 1), Active: boolPtr(true)})
	require.ErrorIs(t, err, types.ErrOccupancyConflict)
	assert.Zero(t, count(f.server.callsSince(mark), "UpdateContract"))

	// Edits that leave it inactive still go through.
	got, err := f.contracts.Update(ctx, old, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.April, 1)})
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestUpdateContractFetchesWhenNotLoaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	c := f.server.addContract(x, true)

	_, err := f.contracts.Update(ctx, c, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.April, 1), Active: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 1, count(f.server.callsSince(0), "GetContract"))

	got, ok := f.contracts.Store().Find(c)
	require.True(t, ok)
	assert.False(t, got.Active)
}

func TestDeleteReferencelessContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	keep := f.server.addContract(x, true)
	orphan := f.server.addContract("", false)
	require.NoError(t, f.contracts.Reload(ctx))
	aptBefore := f.apartments.Store().Snapshot()

	mark := f.server.mark()
	outcome, err := f.contracts.DeleteOrDeactivate(ctx, orphan, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEliminated, outcome)
	assert.Equal(t, []string{"DeleteContract"}, f.server.callsSince(mark), "no reload of either store")

	items := f.contracts.Store().Items()
	require.Len(t, items, 1)
	assert.Equal(t, keep, items[0].ID)
	assert.Equal(t, aptBefore, f.apartments.Store().Snapshot())
	assert.Equal(t, MsgContractEliminated, f.contracts.Store().Banner().Message)
}

func TestDeactivateContractWithReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	c := f.server.addContract(x, true)
	require.NoError(t, f.contracts.Reload(ctx))

	plan := f.contracts.RemovalPlan(true)
	assert.Equal(t, PromptContractDeactivate, plan.Prompt)

	mark := f.server.mark()
	outcome, err := f.contracts.DeleteOrDeactivate(ctx, c, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeactivated, outcome)

	calls := f.server.callsSince(mark)
	assert.Equal(t, "DeactivateContract", calls[0])
	assert.Equal(t, 1, count(calls, "ListContracts"))
	assert.Equal(t, 1, count(calls, "ListApartments"))

	got, ok := f.contracts.Store().Find(c)
	require.True(t, ok, "soft deactivation keeps the contract")
	assert.False(t, got.Active)
	apt, _ := f.apartments.Store().Find(x)
	assert.False(t, apt.HasActiveContract)
	assert.Contains(t, ids(f.contracts.EligibleApartments("")), x)
	assert.Equal(t, MsgContractDeactivated, f.contracts.Store().Banner().Message)
}

func TestContractTransportFailureLeavesStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.server.addApartment("101", types.ApartmentStatusActive)
	c := f.server.addContract(x, true)
	require.NoError(t, f.contracts.Reload(ctx))
	aptBefore := f.apartments.Store().Items()
	conBefore := f.contracts.Store().Items()

	f.server.failOn("UpdateContract", &types.RemoteError{Op: "update contract", Status: http.StatusConflict, Message: "El apartamento ya tiene un contrato activo"})
	_, err := f.contracts.Update(ctx, c, types.ContractFields{ApartmentID: x, StartDate: date(time.March, 1), EndDate: date(time.April, 1)})
	require.ErrorIs(t, err, types.ErrRemoteFailure)

	f.server.failOn("DeactivateContract", errors.New("reset by peer"))
	_, err = f.contracts.DeleteOrDeactivate(ctx, c, true)
	require.Error(t, err)

	assert.Equal(t, aptBefore, f.apartments.Store().Items())
	assert.Equal(t, conBefore, f.contracts.Store().Items())
	b := f.contracts.Store().Banner()
	require.NotNil(t, b)
	assert.Equal(t, store.BannerError, b.Kind)
	assert.Equal(t, MsgContractRemoveFailed, b.Message)
}

func TestContractMutationsRequireSession(t *testing.T) {
	f := newFixture(t)
	f.session.valid = false
	ctx := context.Background()
	fields := types.ContractFields{ApartmentID: "a1", StartDate: date(time.March, 1), EndDate: date(time.April, 1)}

	_, err := f.contracts.Create(ctx, fields)
	assert.ErrorIs(t, err, types.ErrAuthRequired)
	_, err = f.contracts.Update(ctx, "c1", fields)
	assert.ErrorIs(t, err, types.ErrAuthRequired)
	_, err = f.contracts.DeleteOrDeactivate(ctx, "c1", false)
	assert.ErrorIs(t, err, types.ErrAuthRequired)

	assert.Empty(t, f.server.callsSince(0))
}

func TestContractsReloadReportsFailure(t *testing.T) {
	f := newFixture(t)
	f.server.addApartment("101", types.ApartmentStatusActive)
	f.server.failOn("ListContracts", errors.New("boom"))

	err := f.contracts.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, MsgContractLoadFailed, f.contracts.Store().Banner().Message)
	assert.True(t, f.apartments.Store().Loaded(), "apartment reload is independent")
}
