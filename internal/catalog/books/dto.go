package books

// 蔵書登録リクエスト
type CreateBookRequest struct {
	Title string `json:"title" binding:"required"`
	ISBN  string `json:"isbn" binding:"required"`
}

// 蔵書レスポンス
type BookResponse struct {
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`
	ISBN   string `json:"isbn"`
}
