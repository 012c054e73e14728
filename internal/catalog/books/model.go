package books

// Book は books テーブルの1行を表す。登録後は不変（更新エンドポイントなし）
type Book struct {
	BookID int64
	Title  string
	ISBN   string
}

type BookFilter struct {
	Title *string
	ISBN  *string
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
