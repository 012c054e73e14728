package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ===== Error model (books と同型) =====

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

func (s *Service) CreateInventory(ctx context.Context, req CreateInventoryRequest) (*InventoryResponse, error) {
	if req.BookID <= 0 {
		return nil, ErrInvalid("book_id must be > 0")
	}
	m := &InventoryItem{BookID: req.BookID}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) GetInventory(ctx context.Context, inventoryID int64) (*InventoryResponse, error) {
	if inventoryID <= 0 {
		return nil, ErrInvalid("inventory_id must be > 0")
	}
	m, err := s.store.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) DeleteInventory(ctx context.Context, inventoryID int64) error {
	if inventoryID <= 0 {
		return ErrInvalid("inventory_id must be > 0")
	}
	n, err := s.store.Delete(ctx, inventoryID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("inventory item not found")
	}
	return nil
}

func (s *Service) ListInventory(ctx context.Context, bookID *int64, p Page) ([]InventoryResponse, int64, error) {
	if bookID != nil && *bookID <= 0 {
		return nil, 0, ErrInvalid("book_id must be > 0")
	}
	rows, total, err := s.store.List(ctx, bookID, p)
	if err != nil {
		return nil, 0, err
	}
	items := make([]InventoryResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, toResponse(&m))
	}
	return items, total, nil
}

func toResponse(m *InventoryItem) InventoryResponse {
	return InventoryResponse{InventoryID: m.InventoryID, BookID: m.BookID}
}
