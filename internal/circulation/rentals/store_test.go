package rentals

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

func TestTranslateDBErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want Code
	}{
		{"deadlock is retryable", &mysql.MySQLError{Number: 1213}, CodeTxConflict},
		{"lock wait timeout is retryable", &mysql.MySQLError{Number: 1205}, CodeTxConflict},
		{"missing foreign row", &mysql.MySQLError{Number: 1452}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateDBErr(tt.in)
			var api *APIError
			if !errors.As(err, &api) || api.Code != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		if err := translateDBErr(nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("admission rejection is not remapped", func(t *testing.T) {
		in := ErrItemAlreadyRent()
		err := translateDBErr(in)
		var api *APIError
		if !errors.As(err, &api) || api.Code != CodeItemAlreadyRent {
			t.Fatalf("expected ITEM_ALREADY_RENT, got %v", err)
		}
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		in := errors.New("boom")
		if err := translateDBErr(in); !errors.Is(err, in) {
			t.Fatalf("expected passthrough, got %v", err)
		}
	})

	t.Run("other mysql errors pass through", func(t *testing.T) {
		in := &mysql.MySQLError{Number: 1062}
		err := translateDBErr(in)
		var me *mysql.MySQLError
		if !errors.As(err, &me) || me.Number != 1062 {
			t.Fatalf("expected passthrough, got %v", err)
		}
	})
}

// stubTx: ExecContext だけを使う経路用の DBTX 実装
type stubTx struct {
	rows int64
}

type stubResult struct {
	rows int64
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, nil }

func (s *stubTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return stubResult{rows: s.rows}, nil
}

func (s *stubTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (s *stubTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func TestSQLGuardUpdateRowGone(t *testing.T) {
	// 更新対象の行がTx中に消えていた場合、成功として扱わない
	g := &sqlGuard{tx: &stubTx{rows: 0}}
	err := g.Update(context.Background(), &Rental{
		RentalID: 9, InventoryID: 1, PatronID: 1, RentalDate: time.Now(),
	})
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSQLGuardUpdateRowMatched(t *testing.T) {
	g := &sqlGuard{tx: &stubTx{rows: 1}}
	err := g.Update(context.Background(), &Rental{
		RentalID: 9, InventoryID: 1, PatronID: 1, RentalDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
