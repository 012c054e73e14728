package rentals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"LIBRIS-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// ---- Transactional methods ----

// ExecCreateRental: 行ロック→履歴読み→判定→INSERT を1Txで行う
func (s *Store) ExecCreateRental(ctx context.Context, m *Rental) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return createWithGuard(ctx, &sqlGuard{tx: tx}, m)
	})
	return translateDBErr(err)
}

// ExecUpdateRental: 全置換更新。対象レコードの存在確認も同一Tx内で行う
func (s *Store) ExecUpdateRental(ctx context.Context, m *Rental) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		g := &sqlGuard{tx: tx}
		if _, err := g.getByID(ctx, m.RentalID); err != nil {
			return err
		}
		return updateWithGuard(ctx, g, m)
	})
	return translateDBErr(err)
}

// ---- Queries ----

func (s *Store) GetByID(ctx context.Context, rentalID int64) (*Rental, error) {
	g := &sqlGuard{tx: s.db}
	return g.getByID(ctx, rentalID)
}

func (s *Store) GetByULID(ctx context.Context, rentalULID string) (*Rental, error) {
	const q = `
	SELECT rental_id, rental_ulid, inventory_id, patron_id, rental_date, return_date
	FROM rentals WHERE rental_ulid = ?`
	var m Rental
	err := s.db.QueryRowContext(ctx, q, rentalULID).Scan(
		&m.RentalID, &m.RentalULID, &m.InventoryID, &m.PatronID, &m.RentalDate, &m.ReturnDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("rental not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RentalHistory: 現物1件の貸出全履歴（ロックなしの読み取り側）
func (s *Store) RentalHistory(ctx context.Context, inventoryID int64) ([]Rental, error) {
	g := &sqlGuard{tx: s.db}
	return g.RentalHistory(ctx, inventoryID)
}

func (s *Store) ListRentals(ctx context.Context, f RentalFilter, p Page) ([]Rental, int64, error) {
	var (
		sb     strings.Builder
		args   []any
		wheres []string
	)
	sb.WriteString(`
	SELECT rental_id, rental_ulid, inventory_id, patron_id, rental_date, return_date
	FROM rentals`)

	if f.PatronID != nil {
		wheres = append(wheres, "patron_id = ?")
		args = append(args, *f.PatronID)
	}
	if f.InventoryID != nil {
		wheres = append(wheres, "inventory_id = ?")
		args = append(args, *f.InventoryID)
	}
	if f.OpenOnly {
		wheres = append(wheres, "return_date IS NULL")
	}
	if len(wheres) > 0 {
		sb.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY rental_date %s, rental_id %s", order, order))
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

	var out []Rental
	for rows.Next() {
		var m Rental
		if err := rows.Scan(&m.RentalID, &m.RentalULID, &m.InventoryID, &m.PatronID, &m.RentalDate, &m.ReturnDate); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// 総件数（同条件）
	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM rentals`)
	if len(wheres) > 0 {
		cb.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ---- guardTx implementation over db.DBTX ----

type sqlGuard struct {
	tx db.DBTX
}

func (g *sqlGuard) LockInventory(ctx context.Context, inventoryID int64) error {
	const q = `SELECT inventory_id FROM inventory WHERE inventory_id = ? FOR UPDATE`
	var id int64
	if err := g.tx.QueryRowContext(ctx, q, inventoryID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("inventory item not found")
		}
		return err
	}
	return nil
}

func (g *sqlGuard) RentalHistory(ctx context.Context, inventoryID int64) ([]Rental, error) {
	const q = `
	SELECT rental_id, rental_ulid, inventory_id, patron_id, rental_date, return_date
	FROM rentals WHERE inventory_id = ?`
	rows, err := g.tx.QueryContext(ctx, q, inventoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rental
	for rows.Next() {
		var m Rental
		if err := rows.Scan(&m.RentalID, &m.RentalULID, &m.InventoryID, &m.PatronID, &m.RentalDate, &m.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (g *sqlGuard) Insert(ctx context.Context, r *Rental) error {
	const q = `
	INSERT INTO rentals (rental_ulid, inventory_id, patron_id, rental_date, return_date)
	VALUES (?, ?, ?, ?, ?)`
	res, err := g.tx.ExecContext(ctx, q,
		r.RentalULID, r.InventoryID, r.PatronID, r.RentalDate.Format(DateLayout), nullDateOrNil(r.ReturnDate),
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	r.RentalID = id
	return nil
}

func (g *sqlGuard) Update(ctx context.Context, r *Rental) error {
	const q = `
	UPDATE rentals
	SET inventory_id = ?, patron_id = ?, rental_date = ?, return_date = ?
	WHERE rental_id = ?`
	res, err := g.tx.ExecContext(ctx, q,
		r.InventoryID, r.PatronID, r.RentalDate.Format(DateLayout), nullDateOrNil(r.ReturnDate), r.RentalID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// getByID のあとで行が消えた（別コネクションからの削除）
		return ErrNotFound("rental not found")
	}
	return nil
}

func (g *sqlGuard) getByID(ctx context.Context, rentalID int64) (*Rental, error) {
	const q = `
	SELECT rental_id, rental_ulid, inventory_id, patron_id, rental_date, return_date
	FROM rentals WHERE rental_id = ?`
	var m Rental
	err := g.tx.QueryRowContext(ctx, q, rentalID).Scan(
		&m.RentalID, &m.RentalULID, &m.InventoryID, &m.PatronID, &m.RentalDate, &m.ReturnDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("rental not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ---- helpers ----

func nullDateOrNil(nt sql.NullTime) any {
	if nt.Valid {
		return nt.Time.Format(DateLayout)
	}
	return nil
}

// translateDBErr: ストア層のエラーをAPIエラーへ寄せる。
// 1213/1205 はリトライ可能な競合としてそのまま呼び出し側へ返す。
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1213, 1205: // deadlock / lock wait timeout
			return ErrTxConflict()
		case 1452: // FK違反: patron か inventory が存在しない
			return ErrNotFound("patron or inventory item not found")
		}
	}
	return err
}
