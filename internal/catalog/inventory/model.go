package inventory

// InventoryItem は inventory テーブルの1行（= 現物1冊）を表す。
// 同じ book_id を持つ行が複数あってよい。貸出中かどうかはここに持たない
type InventoryItem struct {
	InventoryID int64
	BookID      int64
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
