package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lotqc/model"

	"github.com/jmoiron/sqlx"
)

const lotColumns = `lot_id, product_name, quantity, production_date, expiration_date`

// LotStore keeps lots in a SQL table through sqlx. Queries are written with
// '?' placeholders and rebound for the connected driver.
type LotStore struct {
	db *sqlx.DB
}

func NewLotStore(db *sqlx.DB) *LotStore {
	return &LotStore{db: db}
}

// DB exposes the connection for bootstrap code.
func (s *LotStore) DB() *sqlx.DB { return s.db }

func (s *LotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts one lot and returns its generated id.
func (s *LotStore) Create(ctx context.Context, in model.LotInput) (int64, error) {
	id, err := InsertLot(ctx, s.db, in)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CreateBatch inserts all lots in one transaction. Either every lot is
// stored or none is.
func (s *LotStore) CreateBatch(ctx context.Context, ins []model.LotInput) (ids []int64, err error) {
	if len(ins) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for lot batch: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			ids = nil
			err = fmt.Errorf("failed to commit lot batch: %w", err)
		}
	}()

	ids, err = InsertLotsInTx(ctx, tx, ins)
	return ids, err
}

func (s *LotStore) GetAll(ctx context.Context) ([]model.Lot, error) {
	lots := []model.Lot{}
	q := `SELECT ` + lotColumns + ` FROM lots ORDER BY lot_id`
	if err := s.db.SelectContext(ctx, &lots, q); err != nil {
		return nil, fmt.Errorf("failed to select all lots: %w", err)
	}
	return lots, nil
}

func (s *LotStore) GetByID(ctx context.Context, id int64) (model.Lot, error) {
	var l model.Lot
	q := s.db.Rebind(`SELECT ` + lotColumns + ` FROM lots WHERE lot_id = ?`)
	if err := s.db.GetContext(ctx, &l, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Lot{}, fmt.Errorf("lot %d: %w", id, model.ErrLotNotFound)
		}
		return model.Lot{}, fmt.Errorf("failed to get lot %d: %w", id, err)
	}
	return l, nil
}

func (s *LotStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM lots WHERE lot_id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete lot %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for lot %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("lot %d: %w", id, model.ErrLotNotFound)
	}
	return nil
}

// GetCompliant returns lots with expiration_date >= asOf.
func (s *LotStore) GetCompliant(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	lots := []model.Lot{}
	q := s.db.Rebind(`SELECT ` + lotColumns + ` FROM lots WHERE expiration_date >= ? ORDER BY lot_id`)
	if err := s.db.SelectContext(ctx, &lots, q, asOf); err != nil {
		return nil, fmt.Errorf("failed to select compliant lots as of %s: %w", asOf, err)
	}
	return lots, nil
}

// GetExpired returns lots with expiration_date < asOf.
func (s *LotStore) GetExpired(ctx context.Context, asOf model.Date) ([]model.Lot, error) {
	lots := []model.Lot{}
	q := s.db.Rebind(`SELECT ` + lotColumns + ` FROM lots WHERE expiration_date < ? ORDER BY lot_id`)
	if err := s.db.SelectContext(ctx, &lots, q, asOf); err != nil {
		return nil, fmt.Errorf("failed to select expired lots as of %s: %w", asOf, err)
	}
	return lots, nil
}

func (s *LotStore) Count(ctx context.Context) (int, error) {
	return CountLots(ctx, s.db)
}

// CountCompliance counts all lots and the compliant ones in one statement.
func (s *LotStore) CountCompliance(ctx context.Context, asOf model.Date) (model.ComplianceCount, error) {
	var c model.ComplianceCount
	q := s.db.Rebind(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN expiration_date >= ? THEN 1 ELSE 0 END), 0) AS compliant
		FROM lots`)
	if err := s.db.GetContext(ctx, &c, q, asOf); err != nil {
		return model.ComplianceCount{}, fmt.Errorf("failed to count compliant lots as of %s: %w", asOf, err)
	}
	return c, nil
}

// CountLots works on either a connection or a transaction.
func CountLots(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM lots`); err != nil {
		return 0, fmt.Errorf("failed to count lots: %w", err)
	}
	return n, nil
}

const insertLotQuery = `
	INSERT INTO lots (product_name, quantity, production_date, expiration_date)
	VALUES (?, ?, ?, ?)
	RETURNING lot_id`

// InsertLot inserts a single lot outside of any explicit transaction.
func InsertLot(ctx context.Context, db *sqlx.DB, in model.LotInput) (int64, error) {
	var id int64
	err := db.GetContext(ctx, &id, db.Rebind(insertLotQuery),
		in.ProductName, in.Quantity, in.ProductionDate, in.ExpirationDate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lot %q: %w", in.ProductName, err)
	}
	return id, nil
}

// InsertLotsInTx inserts lots with one prepared statement inside tx.
func InsertLotsInTx(ctx context.Context, tx *sqlx.Tx, ins []model.LotInput) ([]int64, error) {
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertLotQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement for lots: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(ins))
	for _, in := range ins {
		var id int64
		err := stmt.QueryRowxContext(ctx, in.ProductName, in.Quantity, in.ProductionDate, in.ExpirationDate).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert lot %q: %w", in.ProductName, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
