package lot_test

import (
	"context"
	"testing"
	"time"

	"lotqc/clock"
	"lotqc/database"
	"lotqc/loader"
	"lotqc/lot"
	"lotqc/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, now time.Time) (*lot.Service, *clock.FixedClock) {
	t.Helper()
	c := clock.NewFixedClock(now)
	return lot.NewService(database.NewMemoryStore(), c), c
}

func TestService_CreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	id, err := svc.Create(ctx, model.NewLotRequest("Test Drug", 100, "2023-01-01", "2030-01-01"))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test Drug", got.ProductName)
	assert.Equal(t, int64(100), got.Quantity)
	assert.Equal(t, "2023-01-01", got.ProductionDate.String())
	assert.Equal(t, "2030-01-01", got.ExpirationDate.String())
}

func TestService_CreateKeepsNameAsSubmitted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	id, err := svc.Create(ctx, model.NewLotRequest("  Test Drug ", 100, "2023-01-01", "2030-01-01"))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "  Test Drug ", got.ProductName)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	_, err := svc.Create(ctx, model.NewLotRequest("Test Drug", 100, "2023-13-01", "2030-01-01"))
	assert.True(t, model.IsValidationError(err))

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing stored on validation failure")
}

func TestService_NewLotIsCompliantUntilExpiry(t *testing.T) {
	ctx := context.Background()
	svc, c := newService(t, time.Date(2029, 12, 31, 9, 0, 0, 0, time.UTC))

	id, err := svc.Create(ctx, model.NewLotRequest("Test Drug", 100, "2023-01-01", "2030-01-01"))
	require.NoError(t, err)

	compliant, err := svc.GetCompliant(ctx, model.Date{})
	require.NoError(t, err)
	require.Len(t, compliant, 1)
	assert.Equal(t, id, compliant[0].LotID)

	expired, err := svc.GetExpired(ctx, model.Date{})
	require.NoError(t, err)
	assert.Empty(t, expired)

	c.Advance(48 * time.Hour)
	expired, err = svc.GetExpired(ctx, model.Date{})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, id, expired[0].LotID)
}

func TestService_ExplicitAsOfOverridesClock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.Create(ctx, model.NewLotRequest("Test Drug", 100, "2023-01-01", "2030-01-01"))
	require.NoError(t, err)

	compliant, err := svc.GetCompliant(ctx, model.NewDate(2024, time.January, 1))
	require.NoError(t, err)
	assert.Len(t, compliant, 1)
}

func TestService_CompliantPercentage(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		svc, _ := newService(t, time.Now())
		pct, err := svc.GetCompliantPercentage(ctx, model.Date{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, pct)
	})

	t.Run("seeded lots", func(t *testing.T) {
		svc, _ := newService(t, time.Now())
		_, err := svc.Import(ctx, loader.DefaultLots())
		require.NoError(t, err)

		// As of 2024-06-01: Vitamin C, Amoxicillin, Cough Syrup, Omeprazole,
		// Loratadine are still valid.
		pct, err := svc.GetCompliantPercentage(ctx, model.NewDate(2024, time.June, 1))
		require.NoError(t, err)
		assert.Equal(t, 50.0, pct)

		pct, err = svc.GetCompliantPercentage(ctx, model.NewDate(2020, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, 100.0, pct)

		pct, err = svc.GetCompliantPercentage(ctx, model.NewDate(2030, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, 0.0, pct)
	})

	t.Run("not rounded", func(t *testing.T) {
		svc, _ := newService(t, time.Now())
		for _, exp := range []string{"2030-01-01", "2020-01-01", "2020-01-01"} {
			_, err := svc.Create(ctx, model.NewLotRequest("X", 1, "2019-01-01", exp))
			require.NoError(t, err)
		}
		pct, err := svc.GetCompliantPercentage(ctx, model.NewDate(2025, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, float64(1)/float64(3)*100, pct)
	})
}

func TestService_CompliantPercentageDuringDeletes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	var ids []int64
	for i := 0; i < 200; i++ {
		id, err := svc.Create(ctx, model.NewLotRequest("X", 1, "2019-01-01", "2030-01-01"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, id := range ids {
			_ = svc.Delete(ctx, id)
		}
	}()

	asOf := model.NewDate(2025, time.January, 1)
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		pct, err := svc.GetCompliantPercentage(ctx, asOf)
		require.NoError(t, err)
		assert.Contains(t, []float64{0, 100}, pct)
	}
}

func TestCompliantPercentage(t *testing.T) {
	assert.Equal(t, 0.0, lot.CompliantPercentage(0, 0))
	assert.Equal(t, 25.0, lot.CompliantPercentage(1, 4))
	assert.Equal(t, 100.0, lot.CompliantPercentage(4, 4))
}

func TestService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, time.Now())

	id, err := svc.Create(ctx, model.NewLotRequest("Test Drug", 1, "2023-01-01", "2030-01-01"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrLotNotFound)
}
