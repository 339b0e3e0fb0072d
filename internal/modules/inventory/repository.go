package inventory

import "context"

// LedgerRepository defines storage for stock ledger entries and their
// movement history. Every quantity change goes through a signed-delta
// adjustment or an explicit overwrite; callers never read-modify-write.
type LedgerRepository interface {
	List(ctx context.Context) ([]StockLedgerEntry, error)
	Get(ctx context.Context, sku string) (*StockLedgerEntry, error)
	Register(ctx context.Context, entry *StockLedgerEntry) error
	CommitAdjustment(ctx context.Context, sku string, delta int, reference, note string) (*StockLedgerEntry, error)
	Overwrite(ctx context.Context, sku string, quantity int, note string) (*StockLedgerEntry, error)
	Movements(ctx context.Context, sku string) ([]StockMovement, error)
	ListLowStock(ctx context.Context) ([]StockLedgerEntry, error)
}

// CatalogSource yields catalog entries from one product source.
type CatalogSource interface {
	Entries(ctx context.Context) ([]CatalogEntry, error)
}
