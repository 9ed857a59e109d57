package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lotqc/model"
)

// MemoryStore is an in-process lot store used for tests and for running
// the service without a database (db_driver=memory).
type MemoryStore struct {
	mu     sync.RWMutex
	lots   map[int64]model.Lot
	lastID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lots: make(map[int64]model.Lot)}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Create(ctx context.Context, in model.LotInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(in), nil
}

func (s *MemoryStore) CreateBatch(ctx context.Context, ins []model.LotInput) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ins) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(ins))
	for _, in := range ins {
		ids = append(ids, s.insertLocked(in))
	}
	return ids, nil
}

// insertLocked assigns the next id. Ids are never handed out twice, even
// after the lot holding one is deleted.
func (s *MemoryStore) insertLocked(in model.LotInput) int64 {
	s.lastID++
	s.lots[s.lastID] = model.Lot{
		LotID:          s.lastID,
		ProductName:    in.ProductName,
		Quantity:       in.Quantity,
		ProductionDate: in.ProductionDate,
		ExpirationDate: in.ExpirationDate,
	}
	return s.lastID
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]model.Lot, error) {
	return s.filter(func(model.Lot) bool { return true }), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (model.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lots[id]
	if !ok {
		return model.Lot{}, fmt.Errorf("lot %d: %w", id, model.ErrLotNotFound)
	}
	return l, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[id]; !ok {
		return fmt.Errorf("lot %d: %w", id, model.ErrLotNotFound)
	}
	delete(s.lots, id)
	return nil
}

func (s *MemoryStore) GetCompliant(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	return s.filter(func(l model.Lot) bool { return l.IsCompliant(asOf) }), nil
}

func (s *MemoryStore) GetExpired(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	return s.filter(func(l model.Lot) bool { return !l.IsCompliant(asOf) }), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lots), nil
}

func (s *MemoryStore) CountCompliance(ctx context.Context, asOf model.Date) (model.ComplianceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := model.ComplianceCount{Total: len(s.lots)}
	for _, l := range s.lots {
		if l.IsCompliant(asOf) {
			c.Compliant++
		}
	}
	return c, nil
}

func (s *MemoryStore) filter(keep func(model.Lot) bool) []model.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Lot{}
	for _, l := range s.lots {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotID < out[j].LotID })
	return out
}
