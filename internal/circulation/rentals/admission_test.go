package rentals

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func mkRental(id int64, inventoryID int64, returned bool) Rental {
	r := Rental{
		RentalID:    id,
		InventoryID: inventoryID,
		PatronID:    1,
		RentalDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if returned {
		r.ReturnDate = sql.NullTime{Time: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), Valid: true}
	}
	return r
}

func TestAssertAdmissible(t *testing.T) {
	tests := []struct {
		name     string
		history  []Rental
		rentalID int64
		wantCode Code
	}{
		{
			name:     "no history admits new rental",
			history:  nil,
			rentalID: 0,
		},
		{
			name:     "open rental rejects new rental",
			history:  []Rental{mkRental(10, 1, false)},
			rentalID: 0,
			wantCode: CodeItemAlreadyRent,
		},
		{
			name:     "open rental admits update to itself",
			history:  []Rental{mkRental(10, 1, false)},
			rentalID: 10,
		},
		{
			name:     "open rental rejects update to other rental",
			history:  []Rental{mkRental(10, 1, false)},
			rentalID: 11,
			wantCode: CodeItemAlreadyRent,
		},
		{
			name:     "all returned admits new rental",
			history:  []Rental{mkRental(10, 1, true), mkRental(11, 1, true)},
			rentalID: 0,
		},
		{
			name:     "closed history plus matching open rental admits",
			history:  []Rental{mkRental(10, 1, true), mkRental(11, 1, false)},
			rentalID: 11,
		},
		{
			name:     "closed history plus open rental rejects new rental",
			history:  []Rental{mkRental(10, 1, true), mkRental(11, 1, false)},
			rentalID: 0,
			wantCode: CodeItemAlreadyRent,
		},
		{
			name:     "corrupted state with two open rentals rejects",
			history:  []Rental{mkRental(10, 1, false), mkRental(11, 1, false)},
			rentalID: 10,
			wantCode: CodeItemAlreadyRent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertAdmissible(1, tt.history, tt.rentalID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected admit, got %v", err)
				}
				return
			}
			var api *APIError
			if !errors.As(err, &api) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if api.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, api.Code)
			}
		})
	}
}

func TestAssertAdmissibleIdempotent(t *testing.T) {
	// 同じ貸出への更新は何度繰り返しても通る
	history := []Rental{mkRental(10, 1, false)}
	for i := 0; i < 5; i++ {
		if err := assertAdmissible(1, history, 10); err != nil {
			t.Fatalf("attempt %d: expected admit, got %v", i, err)
		}
	}
}

func TestOpenRentals(t *testing.T) {
	history := []Rental{mkRental(10, 1, true), mkRental(11, 1, false), mkRental(12, 1, true)}
	open := openRentals(history)
	if len(open) != 1 || open[0].RentalID != 11 {
		t.Fatalf("expected single open rental 11, got %+v", open)
	}
}

func TestIsReturned(t *testing.T) {
	if !isReturned(nil) {
		t.Error("empty history should count as returned")
	}
	if !isReturned([]Rental{mkRental(10, 1, true)}) {
		t.Error("fully closed history should count as returned")
	}
	if isReturned([]Rental{mkRental(10, 1, true), mkRental(11, 1, false)}) {
		t.Error("history with an open rental is not returned")
	}
}

func TestCurrentRental(t *testing.T) {
	if _, ok := currentRental([]Rental{mkRental(10, 1, true)}); ok {
		t.Error("closed history has no current rental")
	}
	cur, ok := currentRental([]Rental{mkRental(10, 1, true), mkRental(11, 1, false)})
	if !ok || cur.RentalID != 11 {
		t.Fatalf("expected current rental 11, got %+v ok=%v", cur, ok)
	}
}
