package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/rentals/internal/validate"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// apartmentSelect derives contractsCount and hasActiveContract from the
// contracts table.
const apartmentSelect = `SELECT a.apartment_id, a.number, a.level, a.status,
    COUNT(c.contract_id), COALESCE(MAX(c.active), 0)
FROM apartments a
LEFT JOIN contracts c ON c.apartment_id = a.apartment_id`

const apartmentGroup = ` GROUP BY a.apartment_id ORDER BY a.created_at, a.apartment_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApartment(row rowScanner) (types.Apartment, error) {
	var (
		a         types.Apartment
		id        string
		maxActive int64
	)
	if err := row.Scan(&id, &a.Number, &a.Level, &a.Status, &a.ContractsCount, &maxActive); err != nil {
		return types.Apartment{}, err
	}
	a.ID = types.ID(id)
	a.HasActiveContract = maxActive != 0
	return a, nil
}

// ListApartments returns every apartment in creation order.
func (b *Backend) ListApartments() ([]types.Apartment, error) {
	var out []types.Apartment
	err := b.read(func(db *sql.DB) error {
		rows, err := db.Query(apartmentSelect + apartmentGroup)
		if err != nil {
			return fmt.Errorf("querying apartments: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanApartment(rows)
			if err != nil {
				return fmt.Errorf("scanning apartment: %w", err)
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

// GetApartment returns one apartment or ErrNotFound.
func (b *Backend) GetApartment(id types.ID) (types.Apartment, error) {
	var out types.Apartment
	err := b.read(func(db *sql.DB) error {
		var err error
		out, err = getApartment(db, id)
		return err
	})
	return out, err
}

type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getApartment(q rowQuerier, id types.ID) (types.Apartment, error) {
	a, err := scanApartment(q.QueryRow(apartmentSelect+` WHERE a.apartment_id = ?`+apartmentGroup, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Apartment{}, fmt.Errorf("apartment %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Apartment{}, fmt.Errorf("reading apartment %s: %w", id, err)
	}
	return a, nil
}

// normalizeApartment trims and checks the fields. An empty status is left
// empty for the caller to resolve.
func normalizeApartment(f types.ApartmentFields) (types.ApartmentFields, error) {
	f.Number = strings.TrimSpace(f.Number)
	f.Level = strings.TrimSpace(f.Level)
	if err := validate.RequiredText("number", f.Number, types.MaxApartmentNumberLen); err != nil {
		return f, err
	}
	if err := validate.RequiredText("level", f.Level, types.MaxApartmentLevelLen); err != nil {
		return f, err
	}
	if f.Status != "" && !types.ValidApartmentStatus(f.Status) {
		return f, types.NewFieldError("status", types.ErrInvalidStatus, fmt.Sprintf("%q is not active or inactive", f.Status))
	}
	return f, nil
}

// CreateApartment inserts an apartment. An empty status means active.
func (b *Backend) CreateApartment(f types.ApartmentFields) (types.Apartment, error) {
	f, err := normalizeApartment(f)
	if err != nil {
		return types.Apartment{}, err
	}
	if f.Status == "" {
		f.Status = types.ApartmentStatusActive
	}
	id := types.ID(generateUUID())
	var out types.Apartment
	err = b.write(func(tx *sql.Tx) error {
		now := b.timestamp()
		if _, err := tx.Exec(
			`INSERT INTO apartments (apartment_id, number, level, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), f.Number, f.Level, f.Status, now, now,
		); err != nil {
			return fmt.Errorf("inserting apartment: %w", err)
		}
		out, err = getApartment(tx, id)
		return err
	}, "apartments")
	return out, err
}

// UpdateApartment replaces number, level and status. An empty status keeps
// the current one.
func (b *Backend) UpdateApartment(id types.ID, f types.ApartmentFields) (types.Apartment, error) {
	f, err := normalizeApartment(f)
	if err != nil {
		return types.Apartment{}, err
	}
	var out types.Apartment
	err = b.write(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE apartments SET number = ?, level = ?, status = COALESCE(NULLIF(?, ''), status), updated_at = ? WHERE apartment_id = ?`,
			f.Number, f.Level, f.Status, b.timestamp(), id.String(),
		)
		if err != nil {
			return fmt.Errorf("updating apartment: %w", err)
		}
		if err := requireAffected(res, "apartment", id); err != nil {
			return err
		}
		out, err = getApartment(tx, id)
		return err
	}, "apartments")
	return out, err
}

// SetApartmentStatus changes only the status.
func (b *Backend) SetApartmentStatus(id types.ID, status string) (types.Apartment, error) {
	if !types.ValidApartmentStatus(status) {
		return types.Apartment{}, types.NewFieldError("status", types.ErrInvalidStatus, fmt.Sprintf("%q is not active or inactive", status))
	}
	var out types.Apartment
	err := b.write(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE apartments SET status = ?, updated_at = ? WHERE apartment_id = ?`,
			status, b.timestamp(), id.String(),
		)
		if err != nil {
			return fmt.Errorf("updating apartment status: %w", err)
		}
		if err := requireAffected(res, "apartment", id); err != nil {
			return err
		}
		out, err = getApartment(tx, id)
		return err
	}, "apartments")
	return out, err
}

// DeactivateApartment marks the apartment inactive. Contracts are kept.
func (b *Backend) DeactivateApartment(id types.ID) error {
	_, err := b.SetApartmentStatus(id, types.ApartmentStatusInactive)
	return err
}

// DeleteApartment removes an apartment that no contract references. It
// returns ErrApartmentHasContracts otherwise.
func (b *Backend) DeleteApartment(id types.ID) error {
	return b.write(func(tx *sql.Tx) error {
		a, err := getApartment(tx, id)
		if err != nil {
			return err
		}
		if a.ContractsCount > 0 {
			return fmt.Errorf("apartment %s has %d contracts: %w", id, a.ContractsCount, ErrApartmentHasContracts)
		}
		if _, err := tx.Exec(`DELETE FROM apartments WHERE apartment_id = ?`, id.String()); err != nil {
			return fmt.Errorf("deleting apartment: %w", err)
		}
		return nil
	}, "apartments")
}

func requireAffected(res sql.Result, kind string, id types.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, types.ErrNotFound)
	}
	return nil
}
