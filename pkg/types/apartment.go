package types

import "encoding/json"

// Apartment statuses. An apartment toggles between these any number of times.
const (
	ApartmentStatusActive   = "active"
	ApartmentStatusInactive = "inactive"
)

// Field limits enforced before an apartment is sent to the server.
const (
	MaxApartmentNumberLen = 10
	MaxApartmentLevelLen  = 5
)

// Apartment is a rentable unit. ContractsCount and HasActiveContract are
// derived by the server and are only authoritative after a reload.
type Apartment struct {
	ID                ID     `json:"id"`
	Number            string `json:"number"`
	Level             string `json:"level"`
	Status            string `json:"status"`
	ContractsCount    int    `json:"contractsCount"`
	HasActiveContract bool   `json:"hasActiveContract"`
}

// IsActive reports whether the apartment status is active.
func (a Apartment) IsActive() bool {
	return a.Status == ApartmentStatusActive
}

// UnmarshalJSON accepts "floor" as an alias of "level" and defaults a
// missing status to active.
func (a *Apartment) UnmarshalJSON(data []byte) error {
	type plain Apartment
	var raw struct {
		plain
		Floor *string `json:"floor"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Apartment(raw.plain)
	if a.Level == "" && raw.Floor != nil {
		a.Level = *raw.Floor
	}
	if a.Status == "" {
		a.Status = ApartmentStatusActive
	}
	return nil
}

// FlipStatus returns the status opposite to current. Anything that is not
// active is treated as inactive.
func FlipStatus(current string) string {
	if current == ApartmentStatusActive {
		return ApartmentStatusInactive
	}
	return ApartmentStatusActive
}

// ValidApartmentStatus reports whether s is a recognized status.
func ValidApartmentStatus(s string) bool {
	return s == ApartmentStatusActive || s == ApartmentStatusInactive
}

// ApartmentFields is the writable subset of an apartment, used for create
// and update requests.
type ApartmentFields struct {
	Number string `json:"number"`
	Level  string `json:"level"`
	Status string `json:"status"`
}

// ApartmentStatusUpdate is the body of a status change request.
type ApartmentStatusUpdate struct {
	Status string `json:"status"`
}
