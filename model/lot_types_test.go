package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotRequest_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		in, err := NewLotRequest("  Test Drug ", 100, "2023-01-01", "2030-01-01").Validate()
		require.NoError(t, err)
		assert.Equal(t, "  Test Drug ", in.ProductName)
		assert.Equal(t, int64(100), in.Quantity)
		assert.Equal(t, NewDate(2023, time.January, 1), in.ProductionDate)
		assert.Equal(t, NewDate(2030, time.January, 1), in.ExpirationDate)
	})

	t.Run("zero quantity is allowed", func(t *testing.T) {
		_, err := NewLotRequest("Test Drug", 0, "2023-01-01", "2030-01-01").Validate()
		assert.NoError(t, err)
	})

	t.Run("expiration before production is accepted but flagged", func(t *testing.T) {
		in, err := NewLotRequest("Backwards", 1, "2024-01-01", "2023-01-01").Validate()
		require.NoError(t, err)
		assert.True(t, in.ExpiresBeforeProduction())
	})

	cases := []struct {
		name  string
		req   LotRequest
		field string
	}{
		{"missing product name", LotRequest{Quantity: ptr(int64(1)), ProductionDate: ptr("2023-01-01"), ExpirationDate: ptr("2024-01-01")}, "product_name"},
		{"blank product name", NewLotRequest("   ", 1, "2023-01-01", "2024-01-01"), "product_name"},
		{"product name too long", NewLotRequest(strings.Repeat("x", 101), 1, "2023-01-01", "2024-01-01"), "product_name"},
		{"padding counts towards the limit", NewLotRequest(" "+strings.Repeat("x", 100), 1, "2023-01-01", "2024-01-01"), "product_name"},
		{"missing quantity", LotRequest{ProductName: ptr("A"), ProductionDate: ptr("2023-01-01"), ExpirationDate: ptr("2024-01-01")}, "quantity"},
		{"negative quantity", NewLotRequest("A", -1, "2023-01-01", "2024-01-01"), "quantity"},
		{"missing production date", LotRequest{ProductName: ptr("A"), Quantity: ptr(int64(1)), ExpirationDate: ptr("2024-01-01")}, "production_date"},
		{"malformed production date", NewLotRequest("A", 1, "01/01/2023", "2024-01-01"), "production_date"},
		{"missing expiration date", LotRequest{ProductName: ptr("A"), Quantity: ptr(int64(1)), ProductionDate: ptr("2023-01-01")}, "expiration_date"},
		{"malformed expiration date", NewLotRequest("A", 1, "2023-01-01", "2024-13-01"), "expiration_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.Validate()
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestLot_IsCompliant(t *testing.T) {
	l := Lot{ExpirationDate: NewDate(2023, time.November, 15)}
	assert.True(t, l.IsCompliant(NewDate(2023, time.November, 14)))
	assert.True(t, l.IsCompliant(NewDate(2023, time.November, 15)), "expiring today is still compliant")
	assert.False(t, l.IsCompliant(NewDate(2023, time.November, 16)))
}

func ptr[T any](v T) *T { return &v }
