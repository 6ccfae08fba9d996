package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

const contractSelect = `SELECT c.contract_id, c.apartment_id, c.start_date, c.end_date, c.active,
    a.number, a.level
FROM contracts c
LEFT JOIN apartments a ON a.apartment_id = c.apartment_id`

const contractOrder = ` ORDER BY c.created_at, c.contract_id`

func scanContract(row rowScanner) (types.Contract, error) {
	var (
		c              types.Contract
		id, start, end string
		apartmentID    sql.NullString
		number, level  sql.NullString
		active         int64
	)
	if err := row.Scan(&id, &apartmentID, &start, &end, &active, &number, &level); err != nil {
		return types.Contract{}, err
	}
	c.ID = types.ID(id)
	c.Active = active != 0
	var err error
	if c.StartDate, err = types.ParseDate(start); err != nil {
		return types.Contract{}, err
	}
	if c.EndDate, err = types.ParseDate(end); err != nil {
		return types.Contract{}, err
	}
	if apartmentID.Valid && apartmentID.String != "" {
		c.ApartmentID = types.ID(apartmentID.String)
		if number.Valid {
			c.Apartment = &types.ApartmentRef{ID: c.ApartmentID, Number: number.String, Level: level.String}
		}
	}
	return c, nil
}

// ListContracts returns every contract in creation order, each with its
// apartment summary when the apartment exists.
func (b *Backend) ListContracts() ([]types.Contract, error) {
	var out []types.Contract
	err := b.read(func(db *sql.DB) error {
		rows, err := db.Query(contractSelect + contractOrder)
		if err != nil {
			return fmt.Errorf("querying contracts: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanContract(rows)
			if err != nil {
				return fmt.Errorf("scanning contract: %w", err)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

// GetContract returns one contract or ErrNotFound.
func (b *Backend) GetContract(id types.ID) (types.Contract, error) {
	var out types.Contract
	err := b.read(func(db *sql.DB) error {
		var err error
		out, err = getContract(db, id)
		return err
	})
	return out, err
}

func getContract(q rowQuerier, id types.ID) (types.Contract, error) {
	c, err := scanContract(q.QueryRow(contractSelect+` WHERE c.contract_id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Contract{}, fmt.Errorf("contract %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Contract{}, fmt.Errorf("reading contract %s: %w", id, err)
	}
	return c, nil
}

// checkAssignable enforces the occupancy rule inside tx. The apartment must
// exist. Unless it is keep (the contract's current apartment) it must be
// active and free. An active contract may never share its apartment with
// another active contract other than self.
func checkAssignable(tx *sql.Tx, apartmentID, keep, self types.ID, active bool) error {
	a, err := getApartment(tx, apartmentID)
	if err != nil {
		return err
	}
	kept := !keep.IsZero() && apartmentID == keep
	if kept && !active {
		return nil
	}
	if !kept && !a.IsActive() {
		return fmt.Errorf("apartment %s: %w", apartmentID, ErrApartmentUnavailable)
	}
	var n int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM contracts WHERE apartment_id = ? AND active = 1 AND contract_id <> ?`,
		apartmentID.String(), self.String(),
	).Scan(&n); err != nil {
		return fmt.Errorf("counting active contracts: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("apartment %s: %w", apartmentID, ErrApartmentUnavailable)
	}
	return nil
}

func checkContract(p types.ContractPayload) error {
	if p.ApartmentID.IsZero() {
		return types.NewFieldError("id_apartment", types.ErrMissingField, "apartment is required")
	}
	return validate.DateRange(p.StartDate, p.EndDate)
}

// CreateContract inserts a contract for an eligible apartment.
func (b *Backend) CreateContract(p types.ContractPayload) (types.Contract, error) {
	if err := checkContract(p); err != nil {
		return types.Contract{}, err
	}
	id := types.ID(generateUUID())
	var out types.Contract
	err := b.write(func(tx *sql.Tx) error {
		if err := checkAssignable(tx, p.ApartmentID, "", id, true); err != nil {
			return err
		}
		now := b.timestamp()
		if _, err := tx.Exec(
			`INSERT INTO contracts (contract_id, apartment_id, start_date, end_date, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id.String(), p.ApartmentID.String(), p.StartDate.String(), p.EndDate.String(), boolInt(p.Active), now, now,
		); err != nil {
			return fmt.Errorf("inserting contract: %w", err)
		}
		var err error
		out, err = getContract(tx, id)
		return err
	}, "contracts")
	return out, err
}

// UpdateContract replaces apartment, dates and active flag. The contract's
// current apartment stays assignable, but reactivating there is refused
// while another contract holds it.
func (b *Backend) UpdateContract(id types.ID, p types.ContractPayload) (types.Contract, error) {
	if err := checkContract(p); err != nil {
		return types.Contract{}, err
	}
	var out types.Contract
	err := b.write(func(tx *sql.Tx) error {
		current, err := getContract(tx, id)
		if err != nil {
			return err
		}
		if err := checkAssignable(tx, p.ApartmentID, current.ApartmentID, id, p.Active); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE contracts SET apartment_id = ?, start_date = ?, end_date = ?, active = ?, updated_at = ? WHERE contract_id = ?`,
			p.ApartmentID.String(), p.StartDate.String(), p.EndDate.String(), boolInt(p.Active), b.timestamp(), id.String(),
		); err != nil {
			return fmt.Errorf("updating contract: %w", err)
		}
		out, err = getContract(tx, id)
		return err
	}, "contracts")
	return out, err
}

// DeactivateContract clears the active flag and keeps the record.
func (b *Backend) DeactivateContract(id types.ID) error {
	return b.write(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE contracts SET active = 0, updated_at = ? WHERE contract_id = ?`, b.timestamp(), id.String())
		if err != nil {
			return fmt.Errorf("deactivating contract: %w", err)
		}
		return requireAffected(res, "contract", id)
	}, "contracts")
}

// DeleteContract removes a contract that references no apartment. Contracts
// with an apartment can only be deactivated.
func (b *Backend) DeleteContract(id types.ID) error {
	return b.write(func(tx *sql.Tx) error {
		c, err := getContract(tx, id)
		if err != nil {
			return err
		}
		if c.HasApartmentReference() {
			return fmt.Errorf("contract %s: %w", id, ErrContractHasApartment)
		}
		res, err := tx.Exec(`DELETE FROM contracts WHERE contract_id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("deleting contract: %w", err)
		}
		return requireAffected(res, "contract", id)
	}, "contracts")
}

// ExpireContracts deactivates active contracts whose end date is before
// today and returns how many changed.
func (b *Backend) ExpireContracts(today types.Date) (int64, error) {
	var n int64
	err := b.write(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE contracts SET active = 0, updated_at = ? WHERE active = 1 AND end_date < ?`,
			b.timestamp(), today.String(),
		)
		if err != nil {
			return fmt.Errorf("expiring contracts: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	}, "contracts")
	return n, err
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
