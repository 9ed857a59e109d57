package lot

import (
	"context"

	"lotqc/model"
)

// Store is the persistence boundary for lots. Every method is a single
// read or write; implementations return model.ErrLotNotFound (possibly
// wrapped) for unknown ids. Result slices are ordered by lot_id.
type Store interface {
	Create(ctx context.Context, in model.LotInput) (int64, error)
	CreateBatch(ctx context.Context, ins []model.LotInput) ([]int64, error)
	GetAll(ctx context.Context) ([]model.Lot, error)
	GetByID(ctx context.Context, id int64) (model.Lot, error)
	Delete(ctx context.Context, id int64) error
	GetCompliant(ctx context.Context, asOf model.Date) ([]model.Lot, error)
	GetExpired(ctx context.Context, asOf model.Date) ([]model.Lot, error)
	Count(ctx context.Context) (int, error)
	CountCompliance(ctx context.Context, asOf model.Date) (model.ComplianceCount, error)
	Ping(ctx context.Context) error
}
