package sqlite

import "errors"

// Server-side rule violations.
var (
	ErrApartmentHasContracts = errors.New("apartment has contracts")
	ErrApartmentUnavailable  = errors.New("apartment is inactive or already has an active contract")
	ErrContractHasApartment  = errors.New("contract references an apartment")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidToken          = errors.New("invalid or expired token")
)
