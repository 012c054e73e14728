package patrons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// PatronStore: Serviceが必要とするストア操作の断面
type PatronStore interface {
	Insert(ctx context.Context, p *Patron) error
	GetByID(ctx context.Context, patronID int64) (*Patron, error)
	Update(ctx context.Context, p *Patron) (int64, error)
	Delete(ctx context.Context, patronID int64) (int64, error)
	List(ctx context.Context, page Page) ([]Patron, int64, error)
	Exists(ctx context.Context, patronID int64) (bool, error)
	CountRentals(ctx context.Context, patronID int64) (int64, error)
}

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (s *Store) Insert(ctx context.Context, p *Patron) error {
	const q = `
	INSERT INTO patrons (name, date_of_birth, phone)
	VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, p.Name, p.DateOfBirth.Format(DateLayout), p.Phone)
	if err != nil {
		return translateDBErr(err)
	}
	id, _ := res.LastInsertId()
	p.PatronID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, patronID int64) (*Patron, error) {
	const q = `
	SELECT patron_id, name, date_of_birth, phone
	FROM patrons WHERE patron_id = ?`
	var p Patron
	err := s.db.QueryRowContext(ctx, q, patronID).Scan(&p.PatronID, &p.Name, &p.DateOfBirth, &p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("patron not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Update(ctx context.Context, p *Patron) (int64, error) {
	const q = `
	UPDATE patrons
	SET name = ?, date_of_birth = ?, phone = ?
	WHERE patron_id = ?`
	res, err := s.db.ExecContext(ctx, q, p.Name, p.DateOfBirth.Format(DateLayout), p.Phone, p.PatronID)
	if err != nil {
		return 0, translateDBErr(err)
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, patronID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patrons WHERE patron_id = ?`, patronID)
	if err != nil {
		return 0, translateDBErr(err)
	}
	return res.RowsAffected()
}

func (s *Store) List(ctx context.Context, page Page) ([]Patron, int64, error) {
	order := "DESC"
	if strings.ToLower(page.Order) == "asc" {
		order = "ASC"
	}
	if page.Limit <= 0 {
		page.Limit = 50
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	q := fmt.Sprintf(`
	SELECT patron_id, name, date_of_birth, phone
	FROM patrons ORDER BY patron_id %s LIMIT ? OFFSET ?`, order)

	rows, err := s.db.QueryContext(ctx, q, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Patron
	for rows.Next() {
		var p Patron
		if err := rows.Scan(&p.PatronID, &p.Name, &p.DateOfBirth, &p.Phone); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patrons`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Exists(ctx context.Context, patronID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM patrons WHERE patron_id = ? LIMIT 1`, patronID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountRentals: 利用者の貸出レコード総数（返却済みも含む生涯値）
func (s *Store) CountRentals(ctx context.Context, patronID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE patron_id = ?`, patronID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// translateDBErr: UNIQUE違反（phone重複）はCONFLICTに寄せる
func translateDBErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrConflict("phone number already registered")
	}
	return err
}
