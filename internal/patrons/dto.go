package patrons

// 利用者登録リクエスト
type CreatePatronRequest struct {
	Name string `json:"name" binding:"required"`
	// "2006-01-02" 形式
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
}

// 利用者更新リクエスト
type UpdatePatronRequest struct {
	Name        string `json:"name" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
}

// 利用者レスポンス
type PatronResponse struct {
	PatronID    int64  `json:"patron_id"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
}

// 生涯貸出数レスポンス（返却済みも含む）
type RentalCountResponse struct {
	PatronID int64 `json:"patron_id"`
	Rentals  int64 `json:"rentals"`
}
