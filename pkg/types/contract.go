package types

import "encoding/json"

// Contract states. Draft exists only client-side before the first save;
// Deleted is terminal and reachable only from a contract without an
// apartment reference.
const (
	ContractStateDraft    = "draft"
	ContractStateActive   = "active"
	ContractStateInactive = "inactive"
	ContractStateDeleted  = "deleted"
)

// ApartmentRef is the apartment summary a server may embed in a contract.
type ApartmentRef struct {
	ID     ID     `json:"id"`
	Number string `json:"number,omitempty"`
	Level  string `json:"level,omitempty"`
}

// Contract binds one apartment to a date range. The contract holds a
// reference to the apartment and does not own it.
type Contract struct {
	ID          ID            `json:"id"`
	ApartmentID ID            `json:"id_apartment"`
	Apartment   *ApartmentRef `json:"apartment,omitempty"`
	StartDate   Date          `json:"start_date"`
	EndDate     Date          `json:"end_date"`
	Active      bool          `json:"active"`
}

// UnmarshalJSON fills ApartmentID from the embedded apartment when the server
// sends only the nested object.
func (c *Contract) UnmarshalJSON(data []byte) error {
	type plain Contract
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Contract(raw)
	if c.ApartmentID.IsZero() && c.Apartment != nil {
		c.ApartmentID = c.Apartment.ID
	}
	return nil
}

// HasApartmentReference reports whether the contract references an apartment.
func (c Contract) HasApartmentReference() bool {
	return !c.ApartmentID.IsZero()
}

// State returns the saved state of the contract.
func (c Contract) State() string {
	if c.ID.IsZero() {
		return ContractStateDraft
	}
	if c.Active {
		return ContractStateActive
	}
	return ContractStateInactive
}

// ApartmentLabel returns the apartment number for display, or "Sin asignar"
// when the contract has no apartment.
func (c Contract) ApartmentLabel() string {
	if c.Apartment != nil && c.Apartment.Number != "" {
		return c.Apartment.Number
	}
	if c.HasApartmentReference() {
		return c.ApartmentID.String()
	}
	return "Sin asignar"
}

// ContractFields is the writable subset of a contract. A nil Active means
// "use the default", which is true on creation.
type ContractFields struct {
	ApartmentID ID    `json:"id_apartment"`
	StartDate   Date  `json:"start_date"`
	EndDate     Date  `json:"end_date"`
	Active      *bool `json:"active,omitempty"`
}

// ActiveOr returns the Active flag, or def when it was not provided.
func (f ContractFields) ActiveOr(def bool) bool {
	if f.Active == nil {
		return def
	}
	return *f.Active
}

// ContractPayload is the body sent on contract create and update.
type ContractPayload struct {
	ApartmentID ID   `json:"id_apartment"`
	StartDate   Date `json:"start_date"`
	EndDate     Date `json:"end_date"`
	Active      bool `json:"active"`
}
