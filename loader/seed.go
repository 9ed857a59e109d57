package loader

import (
	"context"
	"fmt"
	"time"

	"lotqc/lot"
	"lotqc/model"

	"github.com/rs/zerolog/log"
)

type seedLot struct {
	name       string
	quantity   int64
	production model.Date
	expiration model.Date
}

func d(y int, m time.Month, day int) model.Date { return model.NewDate(y, m, day) }

var defaultLots = []seedLot{
	{"Paracetamol 500mg", 1000, d(2023, 1, 1), d(2024, 1, 1)},
	{"Ibuprofen 200mg", 500, d(2023, 2, 1), d(2024, 2, 1)},
	{"Aspirin 100mg", 2000, d(2022, 11, 15), d(2023, 11, 15)},
	{"Vitamin C 1000mg", 1500, d(2023, 3, 10), d(2025, 3, 10)},
	{"Amoxicillin 250mg", 800, d(2022, 12, 1), d(2024, 12, 1)},
	{"Cough Syrup 100ml", 600, d(2023, 4, 5), d(2025, 4, 5)},
	{"Cetirizine 10mg", 1200, d(2022, 10, 20), d(2023, 10, 20)},
	{"Metformin 500mg", 1800, d(2023, 5, 15), d(2024, 5, 15)},
	{"Omeprazole 20mg", 900, d(2023, 6, 1), d(2025, 6, 1)},
	{"Loratadine 10mg", 1000, d(2023, 7, 12), d(2024, 7, 12)},
}

// DefaultLots returns the example lots inserted into an empty store.
func DefaultLots() []model.LotInput {
	ins := make([]model.LotInput, 0, len(defaultLots))
	for _, s := range defaultLots {
		ins = append(ins, model.LotInput{
			ProductName:    s.name,
			Quantity:       s.quantity,
			ProductionDate: s.production,
			ExpirationDate: s.expiration,
		})
	}
	return ins
}

// SeedIfEmpty inserts DefaultLots when the store holds no lots and
// returns how many were inserted. The row count decides, so running it on
// every start is harmless.
func SeedIfEmpty(ctx context.Context, store lot.Store) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check whether lots exist: %w", err)
	}
	if n > 0 {
		log.Info().Int("lots", n).Msg("Lots already present, skipping seed.")
		return 0, nil
	}
	ids, err := store.CreateBatch(ctx, DefaultLots())
	if err != nil {
		return 0, fmt.Errorf("failed to seed lots: %w", err)
	}
	log.Info().Int("inserted", len(ids)).Msg("Database seeded with initial lots.")
	return len(ids), nil
}
