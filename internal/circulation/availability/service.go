package availability

import (
	"context"
	"database/sql"
)

// snapshotStore: Serviceが必要とするストア操作の断面
type snapshotStore interface {
	Snapshot(ctx context.Context, bookID *int64) (candidates []int64, onLoan []int64, err error)
	CountOpenRentals(ctx context.Context) (int64, error)
}

type Service struct {
	store snapshotStore
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

func newService(store snapshotStore) *Service {
	return &Service{store: store}
}

// CountAvailable: 貸出可能な現物数。bookID が nil なら全蔵書が対象。
// 現物N件中K件が貸出中なら N-K を返す。現物0件なら0
func (s *Service) CountAvailable(ctx context.Context, bookID *int64) (int64, error) {
	if bookID != nil && *bookID <= 0 {
		return 0, ErrInvalid("book_id must be > 0")
	}
	candidates, onLoan, err := s.store.Snapshot(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return availableCount(candidates, onLoan), nil
}

// CountOnLoan: システム全体で貸出中の現物数
func (s *Service) CountOnLoan(ctx context.Context) (int64, error) {
	return s.store.CountOpenRentals(ctx)
}

// availableCount: 集合差の要素数。現物ごとの個別クエリは行わない
func availableCount(candidates []int64, onLoan []int64) int64 {
	if len(candidates) == 0 {
		return 0
	}
	rent := make(map[int64]struct{}, len(onLoan))
	for _, id := range onLoan {
		rent[id] = struct{}{}
	}
	var n int64
	for _, id := range candidates {
		if _, ok := rent[id]; !ok {
			n++
		}
	}
	return n
}
