package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ===== Error model (patrons/rentals と同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalid("title is required")
	}
	if strings.TrimSpace(req.ISBN) == "" {
		return nil, ErrInvalid("isbn is required")
	}

	b := &Book{Title: req.Title, ISBN: req.ISBN}
	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) GetBook(ctx context.Context, bookID int64) (*BookResponse, error) {
	if bookID <= 0 {
		return nil, ErrInvalid("book_id must be > 0")
	}
	b, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID <= 0 {
		return ErrInvalid("book_id must be > 0")
	}
	n, err := s.store.Delete(ctx, bookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func (s *Service) ListBooks(ctx context.Context, f BookFilter, p Page) ([]BookResponse, int64, error) {
	rows, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	items := make([]BookResponse, 0, len(rows))
	for _, b := range rows {
		items = append(items, toResponse(&b))
	}
	return items, total, nil
}

func toResponse(b *Book) BookResponse {
	return BookResponse{BookID: b.BookID, Title: b.Title, ISBN: b.ISBN}
}
