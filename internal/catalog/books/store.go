package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `INSERT INTO books (title, isbn) VALUES (?, ?)`
	res, err := s.db.ExecContext(ctx, q, b.Title, b.ISBN)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	b.BookID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, bookID int64) (*Book, error) {
	const q = `SELECT book_id, title, isbn FROM books WHERE book_id = ?`
	var b Book
	err := s.db.QueryRowContext(ctx, q, bookID).Scan(&b.BookID, &b.Title, &b.ISBN)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("book not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Delete(ctx context.Context, bookID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) List(ctx context.Context, f BookFilter, p Page) ([]Book, int64, error) {
	var (
		sb     strings.Builder
		args   []any
		wheres []string
	)
	sb.WriteString(`SELECT book_id, title, isbn FROM books`)

	if f.Title != nil && *f.Title != "" {
		wheres = append(wheres, "title LIKE ?")
		args = append(args, "%"+*f.Title+"%")
	}
	if f.ISBN != nil && *f.ISBN != "" {
		wheres = append(wheres, "isbn = ?")
		args = append(args, *f.ISBN)
	}
	if len(wheres) > 0 {
		sb.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY book_id %s", order))
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

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.BookID, &b.Title, &b.ISBN); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM books`)
	if len(wheres) > 0 {
		cb.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
