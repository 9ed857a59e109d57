// Package lot serves pharmaceutical production lots and their compliance
// (not yet expired) status over HTTP.
package lot

import (
	"context"
	"fmt"

	"lotqc/clock"
	"lotqc/model"

	"github.com/rs/zerolog/log"
)

// Service validates input and derives compliance figures on top of a Store.
type Service struct {
	store Store
	clock clock.Clock
}

func NewService(store Store, c clock.Clock) *Service {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &Service{store: store, clock: c}
}

// Today is the default asOf for compliance queries.
func (s *Service) Today() model.Date {
	return clock.Today(s.clock)
}

func (s *Service) resolve(asOf model.Date) model.Date {
	if asOf.IsZero() {
		return s.Today()
	}
	return asOf
}

// Create validates req and stores it. Lots that expire before they were
// produced are accepted and logged.
func (s *Service) Create(ctx context.Context, req model.LotRequest) (int64, error) {
	in, err := req.Validate()
	if err != nil {
		return 0, err
	}
	id, err := s.store.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	warnDateOrder(id, in)
	return id, nil
}

// Import stores already validated lots atomically.
func (s *Service) Import(ctx context.Context, ins []model.LotInput) ([]int64, error) {
	ids, err := s.store.CreateBatch(ctx, ins)
	if err != nil {
		return nil, err
	}
	for i, in := range ins {
		warnDateOrder(ids[i], in)
	}
	return ids, nil
}

func warnDateOrder(id int64, in model.LotInput) {
	if in.ExpiresBeforeProduction() {
		log.Warn().
			Int64("lot_id", id).
			Str("production_date", in.ProductionDate.String()).
			Str("expiration_date", in.ExpirationDate.String()).
			Msg("lot expires before its production date")
	}
}

func (s *Service) GetAll(ctx context.Context) ([]model.Lot, error) {
	return s.store.GetAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (model.Lot, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// GetCompliant returns lots with expiration_date >= asOf. A zero asOf
// means today.
func (s *Service) GetCompliant(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	return s.store.GetCompliant(ctx, s.resolve(asOf))
}

// GetExpired returns lots with expiration_date < asOf. A zero asOf means
// today.
func (s *Service) GetExpired(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	return s.store.GetExpired(ctx, s.resolve(asOf))
}

// GetCompliantPercentage is 100 * compliant / total, or 0 for an empty
// store. The result is not rounded.
func (s *Service) GetCompliantPercentage(ctx context.Context, asOf model.Date) (float64, error) {
	c, err := s.store.CountCompliance(ctx, s.resolve(asOf))
	if err != nil {
		return 0, err
	}
	return CompliantPercentage(c.Compliant, c.Total), nil
}

// CompliantPercentage guards the division for an empty set.
func CompliantPercentage(compliant, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(compliant) / float64(total) * 100
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}
