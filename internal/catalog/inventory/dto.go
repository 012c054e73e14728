package inventory

// 現物登録リクエスト
type CreateInventoryRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

// 現物レスポンス
type InventoryResponse struct {
	InventoryID int64 `json:"inventory_id"`
	BookID      int64 `json:"book_id"`
}
