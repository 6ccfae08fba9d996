package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// fakeSession is a session whose validity the test controls.
type fakeSession struct {
	valid  bool
	checks int
}

func (s *fakeSession) ValidateToken() bool {
	s.checks++
	return s.valid
}

func (s *fakeSession) Token() string {
	if s.valid {
		return "token"
	}
	return ""
}

// fakeServer keeps apartments and contracts in memory and derives apartment
// occupancy the way the API does. It records every call by method name.
type fakeServer struct {
	mu         sync.Mutex
	apartments []types.Apartment
	contracts  []types.Contract
	nextID     int
	calls      []string
	fail       map[string]error
	lastCreate types.ContractPayload
}

func newFakeServer() *fakeServer {
	return &fakeServer{fail: make(map[string]error)}
}

func (f *fakeServer) addApartment(number, status string) types.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := types.ID(fmt.Sprintf("a%d", f.nextID))
	f.apartments = append(f.apartments, types.Apartment{ID: id, Number: number, Level: "1", Status: status})
	return id
}

func (f *fakeServer) addContract(apartmentID types.ID, active bool) types.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := types.ID(fmt.Sprintf("c%d", f.nextID))
	f.contracts = append(f.contracts, types.Contract{
		ID:          id,
		ApartmentID: apartmentID,
		StartDate:   types.NewDate(2026, time.January, 1),
		EndDate:     types.NewDate(2026, time.December, 31),
		Active:      active,
	})
	return id
}

// mark returns the current position in the call log.
func (f *fakeServer) mark() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// callsSince returns the calls made after mark.
func (f *fakeServer) callsSince(mark int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls[mark:])
}

func (f *fakeServer) record(method string) error {
	f.calls = append(f.calls, method)
	return f.fail[method]
}

func (f *fakeServer) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeServer) derivedLocked(a types.Apartment) types.Apartment {
	a.ContractsCount = 0
	a.HasActiveContract = false
	for _, c := range f.contracts {
		if c.ApartmentID == a.ID {
			a.ContractsCount++
			if c.Active {
				a.HasActiveContract = true
			}
		}
	}
	return a
}

func (f *fakeServer) apartmentIndexLocked(id types.ID) int {
	return slices.IndexFunc(f.apartments, func(a types.Apartment) bool { return a.ID == id })
}

func (f *fakeServer) contractIndexLocked(id types.ID) int {
	return slices.IndexFunc(f.contracts, func(c types.Contract) bool { return c.ID == id })
}

func notFound(op string) error {
	return &types.RemoteError{Op: op, Status: http.StatusNotFound, Message: "no encontrado"}
}

func (f *fakeServer) ListApartments(context.Context) ([]types.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListApartments"); err != nil {
		return nil, err
	}
	out := make([]types.Apartment, 0, len(f.apartments))
	for _, a := range f.apartments {
		out = append(out, f.derivedLocked(a))
	}
	return out, nil
}

func (f *fakeServer) GetApartment(_ context.Context, id types.ID) (types.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetApartment"); err != nil {
		return types.Apartment{}, err
	}
	i := f.apartmentIndexLocked(id)
	if i < 0 {
		return types.Apartment{}, notFound("get apartment")
	}
	return f.derivedLocked(f.apartments[i]), nil
}

func (f *fakeServer) CreateApartment(_ context.Context, fields types.ApartmentFields) (types.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateApartment"); err != nil {
		return types.Apartment{}, err
	}
	f.nextID++
	a := types.Apartment{ID: types.ID(fmt.Sprintf("a%d", f.nextID)), Number: fields.Number, Level: fields.Level, Status: fields.Status}
	f.apartments = append(f.apartments, a)
	return a, nil
}

func (f *fakeServer) UpdateApartment(_ context.Context, id types.ID, fields types.ApartmentFields) (types.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateApartment"); err != nil {
		return types.Apartment{}, err
	}
	i := f.apartmentIndexLocked(id)
	if i < 0 {
		return types.Apartment{}, notFound("update apartment")
	}
	f.apartments[i].Number = fields.Number
	f.apartments[i].Level = fields.Level
	f.apartments[i].Status = fields.Status
	return f.derivedLocked(f.apartments[i]), nil
}

func (f *fakeServer) SetApartmentStatus(_ context.Context, id types.ID, status string) (types.Apartment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetApartmentStatus"); err != nil {
		return types.Apartment{}, err
	}
	i := f.apartmentIndexLocked(id)
	if i < 0 {
		return types.Apartment{}, notFound("set apartment status")
	}
	f.apartments[i].Status = status
	return f.derivedLocked(f.apartments[i]), nil
}

func (f *fakeServer) DeactivateApartment(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeactivateApartment"); err != nil {
		return err
	}
	i := f.apartmentIndexLocked(id)
	if i < 0 {
		return notFound("deactivate apartment")
	}
	f.apartments[i].Status = types.ApartmentStatusInactive
	return nil
}

func (f *fakeServer) DeleteApartment(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteApartment"); err != nil {
		return err
	}
	i := f.apartmentIndexLocked(id)
	if i < 0 {
		return notFound("delete apartment")
	}
	if f.derivedLocked(f.apartments[i]).ContractsCount > 0 {
		return &types.RemoteError{Op: "delete apartment", Status: http.StatusConflict, Message: "El apartamento tiene contratos asociados"}
	}
	f.apartments = slices.Delete(f.apartments, i, i+1)
	return nil
}

func (f *fakeServer) ListContracts(context.Context) ([]types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListContracts"); err != nil {
		return nil, err
	}
	return slices.Clone(f.contracts), nil
}

func (f *fakeServer) GetContract(_ context.Context, id types.ID) (types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetContract"); err != nil {
		return types.Contract{}, err
	}
	i := f.contractIndexLocked(id)
	if i < 0 {
		return types.Contract{}, notFound("get contract")
	}
	return f.contracts[i], nil
}

func (f *fakeServer) CreateContract(_ context.Context, p types.ContractPayload) (types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateContract"); err != nil {
		return types.Contract{}, err
	}
	f.lastCreate = p
	f.nextID++
	c := types.Contract{
		ID:          types.ID(fmt.Sprintf("c%d", f.nextID)),
		ApartmentID: p.ApartmentID,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Active:      p.Active,
	}
	f.contracts = append(f.contracts, c)
	return c, nil
}

func (f *fakeServer) UpdateContract(_ context.Context, id types.ID, p types.ContractPayload) (types.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateContract"); err != nil {
		return types.Contract{}, err
	}
	i := f.contractIndexLocked(id)
	if i < 0 {
		return types.Contract{}, notFound("update contract")
	}
	f.contracts[i].ApartmentID = p.ApartmentID
	f.contracts[i].StartDate = p.StartDate
	f.contracts[i].EndDate = p.EndDate
	f.contracts[i].Active = p.Active
	return f.contracts[i], nil
}

func (f *fakeServer) DeactivateContract(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeactivateContract"); err != nil {
		return err
	}
	i := f.contractIndexLocked(id)
	if i < 0 {
		return notFound("deactivate contract")
	}
	f.contracts[i].Active = false
	return nil
}

func (f *fakeServer) DeleteContract(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteContract"); err != nil {
		return err
	}
	i := f.contractIndexLocked(id)
	if i < 0 {
		return notFound("delete contract")
	}
	f.contracts = slices.Delete(f.contracts, i, i+1)
	return nil
}

// idleScheduler never fires, so markers and banners stay put for assertions.
type idleScheduler struct{}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (idleScheduler) AfterFunc(time.Duration, func()) store.Timer { return idleTimer{} }

type fixture struct {
	server     *fakeServer
	session    *fakeSession
	apartments *Apartments
	contracts  *Contracts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := newFakeServer()
	sess := &fakeSession{valid: true}
	aptStore := NewApartmentStore(store.WithScheduler(idleScheduler{}))
	conStore := NewContractStore(store.WithScheduler(idleScheduler{}))
	t.Cleanup(aptStore.Close)
	t.Cleanup(conStore.Close)
	apts := NewApartments(srv, sess, aptStore, nil)
	return &fixture{
		server:     srv,
		session:    sess,
		apartments: apts,
		contracts:  NewContracts(srv, sess, conStore, apts, nil),
	}
}

func count(calls []string, method string) int {
	n := 0
	for _, c := range calls {
		if c == method {
			n++
		}
	}
	return n
}
