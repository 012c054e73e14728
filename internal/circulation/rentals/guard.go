package rentals

import "context"

// guardTx は入場チェックと書き込みが必要とするトランザクション操作の断面。
// 本番は sqlGuard (store.go)、テストはメモリ実装を差し込む。
type guardTx interface {
	// LockInventory: 現物行のロックを取る。存在しなければ NOT_FOUND
	LockInventory(ctx context.Context, inventoryID int64) error
	// RentalHistory: 現物に紐づく貸出の全履歴
	RentalHistory(ctx context.Context, inventoryID int64) ([]Rental, error)
	Insert(ctx context.Context, r *Rental) error
	Update(ctx context.Context, r *Rental) error
}

// createWithGuard: 「openを読む → 判定 → 書く」を同一Tx・行ロック下で行う。
// 2つの同時貸出が両方通ることはない（後の方はロック解放後に open を観測する）。
func createWithGuard(ctx context.Context, g guardTx, r *Rental) error {
	if err := g.LockInventory(ctx, r.InventoryID); err != nil {
		return err
	}
	history, err := g.RentalHistory(ctx, r.InventoryID)
	if err != nil {
		return err
	}
	if err := assertAdmissible(r.InventoryID, history, 0); err != nil {
		return err
	}
	return g.Insert(ctx, r)
}

// updateWithGuard: 全置換更新。付け替え先の現物に対して同じ判定を通す。
func updateWithGuard(ctx context.Context, g guardTx, r *Rental) error {
	if err := g.LockInventory(ctx, r.InventoryID); err != nil {
		return err
	}
	history, err := g.RentalHistory(ctx, r.InventoryID)
	if err != nil {
		return err
	}
	if err := assertAdmissible(r.InventoryID, history, r.RentalID); err != nil {
		return err
	}
	return g.Update(ctx, r)
}
