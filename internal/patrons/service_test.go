package patrons

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore: PatronStore のメモリ実装
type fakeStore struct {
	patrons      map[int64]*Patron
	rentalCounts map[int64]int64
	countHits    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{patrons: map[int64]*Patron{}, rentalCounts: map[int64]int64{}}
}

func (f *fakeStore) Insert(ctx context.Context, p *Patron) error {
	for _, existing := range f.patrons {
		if existing.Phone == p.Phone {
			return ErrConflict("phone number already registered")
		}
	}
	p.PatronID = int64(len(f.patrons) + 1)
	f.patrons[p.PatronID] = p
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, patronID int64) (*Patron, error) {
	p, ok := f.patrons[patronID]
	if !ok {
		return nil, ErrNotFound("patron not found")
	}
	return p, nil
}

func (f *fakeStore) Update(ctx context.Context, p *Patron) (int64, error) {
	if _, ok := f.patrons[p.PatronID]; !ok {
		return 0, nil
	}
	f.patrons[p.PatronID] = p
	return 1, nil
}

func (f *fakeStore) Delete(ctx context.Context, patronID int64) (int64, error) {
	if _, ok := f.patrons[patronID]; !ok {
		return 0, nil
	}
	delete(f.patrons, patronID)
	return 1, nil
}

func (f *fakeStore) List(ctx context.Context, page Page) ([]Patron, int64, error) {
	var out []Patron
	for _, p := range f.patrons {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Exists(ctx context.Context, patronID int64) (bool, error) {
	_, ok := f.patrons[patronID]
	return ok, nil
}

func (f *fakeStore) CountRentals(ctx context.Context, patronID int64) (int64, error) {
	f.countHits++
	return f.rentalCounts[patronID], nil
}

func TestCountLifetimeRentals(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid patron id", func(t *testing.T) {
		svc := newService(newFakeStore())
		_, err := svc.CountLifetimeRentals(ctx, 0)
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
			t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
		}
	})

	t.Run("unknown patron returns zero", func(t *testing.T) {
		store := newFakeStore()
		svc := newService(store)
		n, err := svc.CountLifetimeRentals(ctx, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0, got %d", n)
		}
		// 存在しない利用者では集計クエリまで行かない
		if store.countHits != 0 {
			t.Errorf("expected no count query, got %d", store.countHits)
		}
	})

	t.Run("counts open and closed rentals", func(t *testing.T) {
		store := newFakeStore()
		store.patrons[7] = &Patron{PatronID: 7, Name: "patron", Phone: "090-0000-0000"}
		store.rentalCounts[7] = 5 // 3 closed + 2 open
		svc := newService(store)

		n, err := svc.CountLifetimeRentals(ctx, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 5 {
			t.Errorf("expected 5, got %d", n)
		}
	})

	t.Run("patron with no rentals returns zero", func(t *testing.T) {
		store := newFakeStore()
		store.patrons[8] = &Patron{PatronID: 8, Name: "patron", Phone: "090-1111-1111"}
		svc := newService(store)

		n, err := svc.CountLifetimeRentals(ctx, 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0, got %d", n)
		}
	})
}

func TestCreatePatronValidation(t *testing.T) {
	svc := newService(newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreatePatronRequest
	}{
		{"missing name", CreatePatronRequest{DateOfBirth: "1990-01-01", Phone: "090-0000-0000"}},
		{"bad date_of_birth", CreatePatronRequest{Name: "p", DateOfBirth: "01/01/1990", Phone: "090-0000-0000"}},
		{"missing phone", CreatePatronRequest{Name: "p", DateOfBirth: "1990-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePatron(ctx, tt.req)
			var api *APIError
			if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
				t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
}

func TestCreatePatronDuplicatePhone(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	ctx := context.Background()

	req := CreatePatronRequest{Name: "a", DateOfBirth: "1990-01-01", Phone: "090-0000-0000"}
	if _, err := svc.CreatePatron(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req.Name = "b"
	_, err := svc.CreatePatron(ctx, req)
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestUpdatePatronNotFound(t *testing.T) {
	svc := newService(newFakeStore())
	_, err := svc.UpdatePatron(context.Background(), 99, UpdatePatronRequest{
		Name: "p", DateOfBirth: "1990-01-01", Phone: "090-0000-0000",
	})
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPatronDateFormatting(t *testing.T) {
	dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)
	resp := toResponse(&Patron{PatronID: 1, Name: "p", DateOfBirth: dob, Phone: "090"})
	if resp.DateOfBirth != "1985-03-15" {
		t.Errorf("expected 1985-03-15, got %s", resp.DateOfBirth)
	}
}
