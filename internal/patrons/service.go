package patrons

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type Service struct {
	store PatronStore
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

func newService(store PatronStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreatePatron(ctx context.Context, req CreatePatronRequest) (*PatronResponse, error) {
	p, err := validatePatron(req.Name, req.DateOfBirth, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) GetPatron(ctx context.Context, patronID int64) (*PatronResponse, error) {
	if patronID <= 0 {
		return nil, ErrInvalid("patron_id must be > 0")
	}
	p, err := s.store.GetByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) UpdatePatron(ctx context.Context, patronID int64, req UpdatePatronRequest) (*PatronResponse, error) {
	if patronID <= 0 {
		return nil, ErrInvalid("patron_id must be > 0")
	}
	p, err := validatePatron(req.Name, req.DateOfBirth, req.Phone)
	if err != nil {
		return nil, err
	}
	p.PatronID = patronID

	n, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound("patron not found")
	}
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) DeletePatron(ctx context.Context, patronID int64) error {
	if patronID <= 0 {
		return ErrInvalid("patron_id must be > 0")
	}
	n, err := s.store.Delete(ctx, patronID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("patron not found")
	}
	return nil
}

func (s *Service) ListPatrons(ctx context.Context, page Page) ([]PatronResponse, int64, error) {
	rows, total, err := s.store.List(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PatronResponse, 0, len(rows))
	for _, p := range rows {
		items = append(items, toResponse(&p))
	}
	return items, total, nil
}

// CountLifetimeRentals: 利用者の貸出レコード総数（返却済みも含む）。
// 利用者が存在しない場合は0を返す（「履歴なし」と区別しない）
func (s *Service) CountLifetimeRentals(ctx context.Context, patronID int64) (int64, error) {
	if patronID <= 0 {
		return 0, ErrInvalid("patron_id must be > 0")
	}
	exists, err := s.store.Exists(ctx, patronID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	return s.store.CountRentals(ctx, patronID)
}

func validatePatron(name, dob, phone string) (*Patron, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalid("name is required")
	}
	parsed, err := time.Parse(DateLayout, dob)
	if err != nil {
		return nil, ErrInvalid("invalid date_of_birth format, expected YYYY-MM-DD")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, ErrInvalid("phone is required")
	}
	return &Patron{Name: name, DateOfBirth: parsed, Phone: phone}, nil
}

func toResponse(p *Patron) PatronResponse {
	return PatronResponse{
		PatronID:    p.PatronID,
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth.Format(DateLayout),
		Phone:       p.Phone,
	}
}
