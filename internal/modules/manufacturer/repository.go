package manufacturer

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Apply outcome reasons reported when apply-to-inventory is a no-op.
const (
	ReasonAlreadyApplied = "already_applied"
	ReasonNotReceived    = "not_received"
)

// ApplyOutcome is the repository-level result of apply-to-inventory.
type ApplyOutcome struct {
	Applied bool
	Reason  string
}

// Repository defines data access for manufacturer orders.
type Repository interface {
	// CreateOrder persists a new order and its items atomically in a transaction.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrderByID retrieves an order with its items.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// ListOrders returns orders for a bucket, newest first, without
	// items. An empty bucket returns everything.
	ListOrders(ctx context.Context, bucket Bucket) ([]*Order, error)

	// UpdateStatus moves an order to a new status. Reaching delivered
	// stamps the actual delivery time.
	UpdateStatus(ctx context.Context, id string, status OrderStatus, actualDelivery *time.Time) error

	// SetTracking attaches or replaces carrier details on an order.
	SetTracking(ctx context.Context, id string, trackingNumber, carrier, trackingURL string) error

	// ApplyToInventory credits every line item's ordered quantity to
	// the stock ledger, exactly once per order. The received check runs
	// against the row as locked inside the transaction, so a
	// concurrent cancel or a second apply cannot slip through.
	ApplyToInventory(ctx context.Context, id string, received func(*Order) bool) (*ApplyOutcome, error)
}

// StockAdjuster is the slice of the inventory ledger this module
// needs: a signed-delta adjustment that joins the caller's
// transaction. The new on-hand quantity is returned.
type StockAdjuster interface {
	AdjustTx(ctx context.Context, tx *sqlx.Tx, sku string, delta int, reference string) (int, error)
}
