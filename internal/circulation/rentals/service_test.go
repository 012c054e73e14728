package rentals

import (
	"context"
	"errors"
	"testing"
)

func newValidationService() *Service {
	// バリデーションで弾かれる入力のみを流すのでストアには到達しない
	return &Service{store: NewStore(nil), clock: realClock{}, id: ulidGen{}}
}

func TestCreateRentalValidation(t *testing.T) {
	s := newValidationService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRentalRequest
	}{
		{"missing inventory_id", CreateRentalRequest{PatronID: 1}},
		{"missing patron_id", CreateRentalRequest{InventoryID: 1}},
		{"bad rental_date", CreateRentalRequest{InventoryID: 1, PatronID: 1, RentalDate: strPtr("01-04-2024")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateRental(ctx, tt.req)
			var api *APIError
			if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
				t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
}

func TestResolveByKeyEmpty(t *testing.T) {
	s := newValidationService()
	_, err := s.GetRentalByKey(context.Background(), "")
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestCurrentRentalValidation(t *testing.T) {
	s := newValidationService()
	_, err := s.CurrentRental(context.Background(), 0)
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
