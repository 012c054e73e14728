package rentals

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// memGuard: guardTx のメモリ実装。LockInventory が行ロックと同様に
// 同一現物への並行アクセスを直列化する。unlock はTxの終了に相当する。
type memGuard struct {
	mu      sync.Mutex
	nextID  int64
	rentals []Rental
}

func (g *memGuard) LockInventory(ctx context.Context, inventoryID int64) error {
	g.mu.Lock()
	return nil
}

func (g *memGuard) unlock() {
	g.mu.Unlock()
}

func (g *memGuard) RentalHistory(ctx context.Context, inventoryID int64) ([]Rental, error) {
	var out []Rental
	for _, r := range g.rentals {
		if r.InventoryID == inventoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *memGuard) Insert(ctx context.Context, r *Rental) error {
	g.nextID++
	r.RentalID = g.nextID
	g.rentals = append(g.rentals, *r)
	return nil
}

func (g *memGuard) Update(ctx context.Context, r *Rental) error {
	for i := range g.rentals {
		if g.rentals[i].RentalID == r.RentalID {
			g.rentals[i] = *r
			return nil
		}
	}
	return ErrNotFound("rental not found")
}

func newTestRental(inventoryID int64) *Rental {
	return &Rental{
		InventoryID: inventoryID,
		PatronID:    1,
		RentalDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

// 同一現物への同時貸出は片方だけが成功する
func TestCreateWithGuardConcurrent(t *testing.T) {
	g := &memGuard{}
	ctx := context.Background()

	const workers = 2
	var ok, rejected int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := createWithGuard(ctx, g, newTestRental(4))
			g.unlock()
			if err == nil {
				atomic.AddInt32(&ok, 1)
				return
			}
			var api *APIError
			if errors.As(err, &api) && api.Code == CodeItemAlreadyRent {
				atomic.AddInt32(&rejected, 1)
				return
			}
			t.Errorf("unexpected error: %v", err)
		}()
	}
	wg.Wait()

	if ok != 1 || rejected != 1 {
		t.Fatalf("expected exactly one success and one rejection, got ok=%d rejected=%d", ok, rejected)
	}
	history, _ := g.RentalHistory(ctx, 4)
	if got := len(openRentals(history)); got != 1 {
		t.Fatalf("invariant violated: %d open rentals", got)
	}
}

// 返却（return_date設定）後は同じ現物を再度貸し出せる
func TestGuardRentReturnRentAgain(t *testing.T) {
	g := &memGuard{}
	ctx := context.Background()

	first := newTestRental(1)
	if err := createWithGuard(ctx, g, first); err != nil {
		g.unlock()
		t.Fatalf("first rental: %v", err)
	}
	g.unlock()

	// 貸出中の再貸出は拒否
	err := createWithGuard(ctx, g, newTestRental(1))
	g.unlock()
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeItemAlreadyRent {
		t.Fatalf("expected ITEM_ALREADY_RENT, got %v", err)
	}

	// 返却
	returned := *first
	returned.ReturnDate = sql.NullTime{Time: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), Valid: true}
	if err := updateWithGuard(ctx, g, &returned); err != nil {
		g.unlock()
		t.Fatalf("return update: %v", err)
	}
	g.unlock()

	// 返却後は新しい貸出が通る
	if err := createWithGuard(ctx, g, newTestRental(1)); err != nil {
		g.unlock()
		t.Fatalf("rental after return: %v", err)
	}
	g.unlock()

	history, _ := g.RentalHistory(ctx, 1)
	if len(history) != 2 {
		t.Fatalf("expected 2 rentals in history, got %d", len(history))
	}
	if got := len(openRentals(history)); got != 1 {
		t.Fatalf("expected 1 open rental, got %d", got)
	}
}

// 別の貸出が開いている現物への付け替えは拒否される
func TestUpdateWithGuardRepointRejected(t *testing.T) {
	g := &memGuard{}
	ctx := context.Background()

	a := newTestRental(1)
	if err := createWithGuard(ctx, g, a); err != nil {
		g.unlock()
		t.Fatalf("rental A: %v", err)
	}
	g.unlock()

	b := newTestRental(2)
	if err := createWithGuard(ctx, g, b); err != nil {
		g.unlock()
		t.Fatalf("rental B: %v", err)
	}
	g.unlock()

	// B を現物1に付け替えようとする → Aが開いているので拒否
	repointed := *b
	repointed.InventoryID = 1
	err := updateWithGuard(ctx, g, &repointed)
	g.unlock()
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeItemAlreadyRent {
		t.Fatalf("expected ITEM_ALREADY_RENT, got %v", err)
	}
}
