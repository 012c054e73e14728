package patrons

import "time"

const DateLayout = "2006-01-02"

// Patron は patrons テーブルの1行を表す。phone はUNIQUE
type Patron struct {
	PatronID    int64
	Name        string
	DateOfBirth time.Time
	Phone       string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
