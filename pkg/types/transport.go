package types

import "context"

// ApartmentTransport performs the apartment calls against the remote API.
// Mutating calls carry the session's bearer credential.
type ApartmentTransport interface {
	ListApartments(ctx context.Context) ([]Apartment, error)
	GetApartment(ctx context.Context, id ID) (Apartment, error)
	CreateApartment(ctx context.Context, fields ApartmentFields) (Apartment, error)
	UpdateApartment(ctx context.Context, id ID, fields ApartmentFields) (Apartment, error)
	SetApartmentStatus(ctx context.Context, id ID, status string) (Apartment, error)
	DeactivateApartment(ctx context.Context, id ID) error
	DeleteApartment(ctx context.Context, id ID) error
}

// ContractTransport performs the contract calls against the remote API.
type ContractTransport interface {
	ListContracts(ctx context.Context) ([]Contract, error)
	GetContract(ctx context.Context, id ID) (Contract, error)
	CreateContract(ctx context.Context, payload ContractPayload) (Contract, error)
	UpdateContract(ctx context.Context, id ID, payload ContractPayload) (Contract, error)
	DeactivateContract(ctx context.Context, id ID) error
	DeleteContract(ctx context.Context, id ID) error
}
