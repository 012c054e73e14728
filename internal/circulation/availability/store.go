package availability

import (
	"context"
	"database/sql"
	"strings"

	"LIBRIS-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// Snapshot: 在庫集計に必要な2つの読み取りを同一の読み取り専用Txで行う。
// candidates: 対象の現物ID（book指定があればその蔵書のみ）
// onLoan:     そのうち貸出中（return_date IS NULL）の現物ID
// candidates が空なら rentals は読まない。
func (s *Store) Snapshot(ctx context.Context, bookID *int64) (candidates []int64, onLoan []int64, err error) {
	err = db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		candidates, err = inventoryIDs(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		onLoan, err = openRentalInventoryIDs(ctx, tx, candidates)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return candidates, onLoan, nil
}

// CountOpenRentals: システム全体で貸出中の件数。集計のみで行は取得しない
func (s *Store) CountOpenRentals(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM rentals WHERE return_date IS NULL`
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func inventoryIDs(ctx context.Context, tx db.DBTX, bookID *int64) ([]int64, error) {
	q := `SELECT inventory_id FROM inventory`
	var args []any
	if bookID != nil {
		q += ` WHERE book_id = ?`
		args = append(args, *bookID)
	}
	return queryIDs(ctx, tx, q, args...)
}

func openRentalInventoryIDs(ctx context.Context, tx db.DBTX, inventoryIDs []int64) ([]int64, error) {
	q := `SELECT DISTINCT inventory_id FROM rentals WHERE return_date IS NULL AND inventory_id IN (` +
		placeholders(len(inventoryIDs)) + `)`
	args := make([]any, 0, len(inventoryIDs))
	for _, id := range inventoryIDs {
		args = append(args, id)
	}
	return queryIDs(ctx, tx, q, args...)
}

func queryIDs(ctx context.Context, tx db.DBTX, q string, args ...any) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
