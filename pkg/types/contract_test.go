package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractUnmarshal(t *testing.T) {
	t.Run("nested apartment fills reference", func(t *testing.T) {
		in := `{"id": 3, "apartment": {"id": 9, "number": "101"}, "start_date": "2025-01-01", "end_date": "2025-12-31T00:00:00Z", "active": true}`
		var c Contract
		require.NoError(t, json.Unmarshal([]byte(in), &c))

		assert.Equal(t, ID("3"), c.ID)
		assert.Equal(t, ID("9"), c.ApartmentID)
		assert.True(t, c.HasApartmentReference())
		assert.Equal(t, "101", c.ApartmentLabel())
		assert.Equal(t, NewDate(2025, time.January, 1), c.StartDate)
		assert.Equal(t, NewDate(2025, time.December, 31), c.EndDate)
		assert.Equal(t, ContractStateActive, c.State())
	})

	t.Run("id_apartment only", func(t *testing.T) {
		in := `{"id": "c1", "id_apartment": "a1", "start_date": "2025-01-01", "end_date": "2025-02-01", "active": false}`
		var c Contract
		require.NoError(t, json.Unmarshal([]byte(in), &c))

		assert.Equal(t, ID("a1"), c.ApartmentID)
		assert.Equal(t, ContractStateInactive, c.State())
	})

	t.Run("no apartment", func(t *testing.T) {
		in := `{"id": "c2", "apartment": null, "start_date": null, "end_date": null, "active": true}`
		var c Contract
		require.NoError(t, json.Unmarshal([]byte(in), &c))

		assert.False(t, c.HasApartmentReference())
		assert.Equal(t, "Sin asignar", c.ApartmentLabel())
		assert.True(t, c.StartDate.IsZero())
	})
}

func TestContractState(t *testing.T) {
	assert.Equal(t, ContractStateDraft, Contract{Active: true}.State())
	assert.Equal(t, ContractStateActive, Contract{ID: "1", Active: true}.State())
	assert.Equal(t, ContractStateInactive, Contract{ID: "1"}.State())
}

func TestContractPayloadMarshal(t *testing.T) {
	p := ContractPayload{
		ApartmentID: "a1",
		StartDate:   NewDate(2025, time.March, 1),
		EndDate:     NewDate(2026, time.February, 28),
		Active:      true,
	}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id_apartment":"a1","start_date":"2025-03-01","end_date":"2026-02-28","active":true}`, string(out))
}

func TestContractFieldsActiveOr(t *testing.T) {
	no := false
	assert.True(t, ContractFields{}.ActiveOr(true))
	assert.False(t, ContractFields{Active: &no}.ActiveOr(true))
}
