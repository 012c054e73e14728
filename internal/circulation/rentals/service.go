package rentals

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

type Service struct {
	store *Store
	clock Clock
	id    IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// 貸出登録。書き込み前の整合性チェックはストアのTx内で走る
func (s *Service) CreateRental(ctx context.Context, req CreateRentalRequest) (*RentalResponse, error) {
	if req.InventoryID <= 0 {
		return nil, ErrInvalid("inventory_id must be > 0")
	}
	if req.PatronID <= 0 {
		return nil, ErrInvalid("patron_id must be > 0")
	}

	rentalDate := s.clock.Now()
	if req.RentalDate != nil && *req.RentalDate != "" {
		parsed, err := time.Parse(DateLayout, *req.RentalDate)
		if err != nil {
			return nil, ErrInvalid("invalid rental_date format, expected YYYY-MM-DD")
		}
		rentalDate = parsed
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	m := &Rental{
		RentalULID:  idStr,
		InventoryID: req.InventoryID,
		PatronID:    req.PatronID,
		RentalDate:  rentalDate,
	}

	if err := s.store.ExecCreateRental(ctx, m); err != nil {
		return nil, err
	}

	resp := toResponse(m)
	return &resp, nil
}

// 貸出更新（全置換）。return_date を設定すると返却になる。
// 現物の付け替えも同じ判定を通る
func (s *Service) UpdateRental(ctx context.Context, key string, req UpdateRentalRequest) (*RentalResponse, error) {
	existing, err := s.resolveByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if req.InventoryID <= 0 {
		return nil, ErrInvalid("inventory_id must be > 0")
	}
	if req.PatronID <= 0 {
		return nil, ErrInvalid("patron_id must be > 0")
	}

	rentalDate, err := time.Parse(DateLayout, req.RentalDate)
	if err != nil {
		return nil, ErrInvalid("invalid rental_date format, expected YYYY-MM-DD")
	}

	var returnDate sql.NullTime
	if req.ReturnDate != nil && *req.ReturnDate != "" {
		parsed, err := time.Parse(DateLayout, *req.ReturnDate)
		if err != nil {
			return nil, ErrInvalid("invalid return_date format, expected YYYY-MM-DD")
		}
		returnDate = sql.NullTime{Time: parsed, Valid: true}
	}

	m := &Rental{
		RentalID:    existing.RentalID,
		RentalULID:  existing.RentalULID,
		InventoryID: req.InventoryID,
		PatronID:    req.PatronID,
		RentalDate:  rentalDate,
		ReturnDate:  returnDate,
	}

	if err := s.store.ExecUpdateRental(ctx, m); err != nil {
		return nil, err
	}

	resp := toResponse(m)
	return &resp, nil
}

// 貸出単一取得（ID or ULID）
func (s *Service) GetRentalByKey(ctx context.Context, key string) (*RentalResponse, error) {
	m, err := s.resolveByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

// 貸出一覧
func (s *Service) ListRentals(ctx context.Context, f RentalFilter, p Page) ([]RentalResponse, int64, error) {
	rows, total, err := s.store.ListRentals(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	items := make([]RentalResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, toResponse(&m))
	}
	return items, total, nil
}

// CurrentRental: 現物を現在保持している貸出。貸出中でなければ NOT_FOUND
func (s *Service) CurrentRental(ctx context.Context, inventoryID int64) (*RentalResponse, error) {
	if inventoryID <= 0 {
		return nil, ErrInvalid("inventory_id must be > 0")
	}
	history, err := s.store.RentalHistory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if open := openRentals(history); len(open) > 1 {
		log.Printf("[ALERT] data integrity: inventory %d has %d open rentals", inventoryID, len(open))
	}
	cur, ok := currentRental(history)
	if !ok {
		return nil, ErrNotFound("no open rental for this inventory item")
	}
	resp := toResponse(&cur)
	return &resp, nil
}

func (s *Service) resolveByKey(ctx context.Context, key string) (*Rental, error) {
	if key == "" {
		return nil, ErrInvalid("id or ulid is required")
	}
	// 数値として解釈できればID検索
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return s.store.GetByID(ctx, id)
	}
	// それ以外は rental_ulid とみなして検索
	return s.store.GetByULID(ctx, key)
}

func toResponse(m *Rental) RentalResponse {
	resp := RentalResponse{
		RentalID:    m.RentalID,
		RentalULID:  m.RentalULID,
		InventoryID: m.InventoryID,
		PatronID:    m.PatronID,
		RentalDate:  m.RentalDate.Format(DateLayout),
		Returned:    m.Returned(),
	}
	if m.ReturnDate.Valid {
		val := m.ReturnDate.Time.Format(DateLayout)
		resp.ReturnDate = &val
	}
	return resp
}
