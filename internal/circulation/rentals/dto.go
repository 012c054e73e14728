package rentals

// 貸出登録リクエスト
type CreateRentalRequest struct {
	InventoryID int64 `json:"inventory_id" binding:"required"`
	PatronID    int64 `json:"patron_id" binding:"required"`
	// "2006-01-02" 形式。省略時は当日
	RentalDate *string `json:"rental_date,omitempty"`
}

// 貸出更新リクエスト（全置換）。返却は return_date を設定して更新する
type UpdateRentalRequest struct {
	InventoryID int64   `json:"inventory_id" binding:"required"`
	PatronID    int64   `json:"patron_id" binding:"required"`
	RentalDate  string  `json:"rental_date" binding:"required"`
	ReturnDate  *string `json:"return_date,omitempty"`
}

// 貸出レスポンス
type RentalResponse struct {
	RentalID    int64   `json:"rental_id"`
	RentalULID  string  `json:"rental_ulid"`
	InventoryID int64   `json:"inventory_id"`
	PatronID    int64   `json:"patron_id"`
	RentalDate  string  `json:"rental_date"`
	ReturnDate  *string `json:"return_date,omitempty"`
	Returned    bool    `json:"returned"`
}
