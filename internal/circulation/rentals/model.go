package rentals

import (
	"database/sql"
	"time"
)

// DATE カラムのフォーマット（rental_date / return_date）
const DateLayout = "2006-01-02"

// Rental は rentals テーブルの1行を表す。
// return_date が NULL の行が「貸出中」。貸出中フラグは持たない（常に導出する）。
type Rental struct {
	RentalID    int64
	RentalULID  string
	InventoryID int64
	PatronID    int64
	RentalDate  time.Time
	ReturnDate  sql.NullTime
}

// Returned: 返却済みかどうか（導出値）
func (r Rental) Returned() bool {
	return r.ReturnDate.Valid
}

// 貸出一覧取得用の検索条件
type RentalFilter struct {
	PatronID    *int64
	InventoryID *int64
	OpenOnly    bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
