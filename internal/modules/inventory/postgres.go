package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const entryColumns = `sku,name,price,quantity,min_stock,location,created_at,updated_at`

// LedgerPostgres stores the stock ledger in Postgres. Adjustments are
// applied as a single atomic increment in SQL so concurrent deltas
// against the same SKU serialize on the row and never lose updates.
type LedgerPostgres struct {
	db            *sqlx.DB
	allowNegative bool
}

func NewLedgerPostgres(db *sqlx.DB, allowNegative bool) *LedgerPostgres {
	return &LedgerPostgres{db: db, allowNegative: allowNegative}
}

// ---- Reads ----

func (r *LedgerPostgres) List(ctx context.Context) ([]StockLedgerEntry, error) {
	entries := []StockLedgerEntry{}
	err := r.db.SelectContext(ctx, &entries, `
SELECT `+entryColumns+` FROM stock_items ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	return entries, nil
}

func (r *LedgerPostgres) Get(ctx context.Context, sku string) (*StockLedgerEntry, error) {
	var entry StockLedgerEntry
	err := r.db.GetContext(ctx, &entry, `
SELECT `+entryColumns+` FROM stock_items WHERE sku=$1`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSKUNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stock item %s: %w", sku, err)
	}
	return &entry, nil
}

func (r *LedgerPostgres) ListLowStock(ctx context.Context) ([]StockLedgerEntry, error) {
	entries := []StockLedgerEntry{}
	err := r.db.SelectContext(ctx, &entries, `
SELECT `+entryColumns+` FROM stock_items
WHERE min_stock > 0 AND quantity <= min_stock ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return entries, nil
}

func (r *LedgerPostgres) Movements(ctx context.Context, sku string) ([]StockMovement, error) {
	if _, err := r.Get(ctx, sku); err != nil {
		return nil, err
	}
	movements := []StockMovement{}
	err := r.db.SelectContext(ctx, &movements, `
SELECT id,sku,delta,quantity_after,reference,note,created_at
FROM stock_movements WHERE sku=$1 ORDER BY created_at DESC`, sku)
	if err != nil {
		return nil, fmt.Errorf("list movements for %s: %w", sku, err)
	}
	return movements, nil
}

// ---- Writes ----

func (r *LedgerPostgres) Register(ctx context.Context, entry *StockLedgerEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, entry, `
INSERT INTO stock_items (sku,name,price,quantity,min_stock,location)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+entryColumns, entry.SKU, entry.Name, entry.Price, entry.Quantity, entry.MinStock, entry.Location)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSKUExists
		}
		return fmt.Errorf("register %s: %w", entry.SKU, err)
	}
	if entry.Quantity != 0 {
		if err := r.insertMovement(ctx, tx, entry.SKU, entry.Quantity, entry.Quantity, RefRegister, ""); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register: %w", err)
	}
	return nil
}

func (r *LedgerPostgres) CommitAdjustment(ctx context.Context, sku string, delta int, reference, note string) (*StockLedgerEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin adjustment: %w", err)
	}
	defer tx.Rollback()

	entry, err := r.applyDelta(ctx, tx, sku, delta, reference, note)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}
	return entry, nil
}

// AdjustTx applies a signed delta inside a caller-owned transaction.
// It lets another module fold ledger credits into its own unit of
// work while keeping all quantity math in this one place. The new
// on-hand quantity is returned.
func (r *LedgerPostgres) AdjustTx(ctx context.Context, tx *sqlx.Tx, sku string, delta int, reference string) (int, error) {
	entry, err := r.applyDelta(ctx, tx, sku, delta, reference, "")
	if err != nil {
		return 0, err
	}
	return entry.Quantity, nil
}

func (r *LedgerPostgres) Overwrite(ctx context.Context, sku string, quantity int, note string) (*StockLedgerEntry, error) {
	if !r.allowNegative && quantity < 0 {
		return nil, ErrStockFloor
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin overwrite: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current, `SELECT quantity FROM stock_items WHERE sku=$1 FOR UPDATE`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSKUNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock stock item %s: %w", sku, err)
	}

	var entry StockLedgerEntry
	err = tx.GetContext(ctx, &entry, `
UPDATE stock_items SET quantity=$1, updated_at=NOW() WHERE sku=$2
RETURNING `+entryColumns, quantity, sku)
	if err != nil {
		return nil, fmt.Errorf("overwrite %s: %w", sku, err)
	}
	if delta := quantity - current; delta != 0 {
		if err := r.insertMovement(ctx, tx, sku, delta, quantity, RefOverwrite, note); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit overwrite: %w", err)
	}
	return &entry, nil
}

// applyDelta is the single code path for every quantity change. The
// increment happens inside the UPDATE itself, so two concurrent +1
// adjustments always net +2 regardless of interleaving. When negative
// stock is disabled the WHERE clause refuses deltas that would cross
// zero.
func (r *LedgerPostgres) applyDelta(ctx context.Context, tx *sqlx.Tx, sku string, delta int, reference, note string) (*StockLedgerEntry, error) {
	query := `
UPDATE stock_items SET quantity = quantity + $1, updated_at = NOW()
WHERE sku = $2`
	if !r.allowNegative {
		query += ` AND quantity + $1 >= 0`
	}
	query += `
RETURNING ` + entryColumns

	var entry StockLedgerEntry
	err := tx.GetContext(ctx, &entry, query, delta, sku)
	if errors.Is(err, sql.ErrNoRows) {
		if !r.allowNegative {
			var exists int
			if checkErr := tx.GetContext(ctx, &exists, `SELECT 1 FROM stock_items WHERE sku=$1`, sku); checkErr == nil {
				return nil, ErrStockFloor
			}
		}
		return nil, ErrSKUNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("adjust %s by %d: %w", sku, delta, err)
	}
	if err := r.insertMovement(ctx, tx, sku, delta, entry.Quantity, reference, note); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerPostgres) insertMovement(ctx context.Context, tx *sqlx.Tx, sku string, delta, after int, reference, note string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO stock_movements (id,sku,delta,quantity_after,reference,note)
VALUES ($1,$2,$3,$4,$5,$6)`, uuid.New(), sku, delta, after, reference, note)
	if err != nil {
		return fmt.Errorf("record movement for %s: %w", sku, err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
