package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (s *Store) Insert(ctx context.Context, m *InventoryItem) error {
	const q = `INSERT INTO inventory (book_id) VALUES (?)`
	res, err := s.db.ExecContext(ctx, q, m.BookID)
	if err != nil {
		return translateDBErr(err)
	}
	id, _ := res.LastInsertId()
	m.InventoryID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, inventoryID int64) (*InventoryItem, error) {
	const q = `SELECT inventory_id, book_id FROM inventory WHERE inventory_id = ?`
	var m InventoryItem
	err := s.db.QueryRowContext(ctx, q, inventoryID).Scan(&m.InventoryID, &m.BookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("inventory item not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Delete(ctx context.Context, inventoryID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE inventory_id = ?`, inventoryID)
	if err != nil {
		return 0, translateDBErr(err)
	}
	return res.RowsAffected()
}

func (s *Store) List(ctx context.Context, bookID *int64, p Page) ([]InventoryItem, int64, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT inventory_id, book_id FROM inventory`)
	if bookID != nil {
		sb.WriteString(` WHERE book_id = ?`)
		args = append(args, *bookID)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY inventory_id %s", order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		var m InventoryItem
		if err := rows.Scan(&m.InventoryID, &m.BookID); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM inventory`)
	if bookID != nil {
		cb.WriteString(` WHERE book_id = ?`)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// translateDBErr: FK違反をAPIエラーへ寄せる
func translateDBErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1452: // 参照先なし
			return ErrNotFound("book not found")
		case 1451: // 貸出履歴から参照されている
			return ErrConflict("inventory item has rental history")
		}
	}
	return err
}
