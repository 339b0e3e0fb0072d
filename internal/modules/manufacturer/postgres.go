package manufacturer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id,order_number,status,order_date,expected_delivery,actual_delivery,
tracking_number,tracking_url,carrier,total_amount,notes,inventory_applied_at,created_at,updated_at`

const itemColumns = `id,order_id,sku,product_name,quantity_ordered,quantity_received,unit_cost,total_cost`

type postgresRepo struct {
	db     *sqlx.DB
	ledger StockAdjuster
}

// NewPostgresRepository creates the Postgres-backed order store. The
// ledger adjuster is used to credit stock inside apply-to-inventory's
// transaction.
func NewPostgresRepository(db *sqlx.DB, ledger StockAdjuster) Repository {
	return &postgresRepo{db: db, ledger: ledger}
}

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, o, `
INSERT INTO manufacturer_orders
  (id, order_number, status, order_date, expected_delivery,
   tracking_number, tracking_url, carrier, total_amount, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING `+orderColumns,
		o.ID, o.OrderNumber, o.Status, o.OrderDate, o.ExpectedDelivery,
		o.TrackingNumber, o.TrackingURL, o.Carrier, o.TotalAmount, o.Notes)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		item.OrderID = o.ID
		_, err = tx.ExecContext(ctx, `
INSERT INTO manufacturer_order_items
  (id, order_id, sku, product_name, quantity_ordered, quantity_received, unit_cost, total_cost)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			item.ID, item.OrderID, item.SKU, item.ProductName,
			item.QuantityOrdered, item.QuantityReceived, item.UnitCost, item.TotalCost)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	var o Order
	err = r.db.GetContext(ctx, &o, `
SELECT `+orderColumns+` FROM manufacturer_orders WHERE id=$1`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	o.Items, err = r.listItems(ctx, r.db, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) ListOrders(ctx context.Context, bucket Bucket) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM manufacturer_orders`
	switch bucket {
	case BucketIncoming:
		query += ` WHERE status NOT IN ('delivered','cancelled')`
	case BucketPast:
		query += ` WHERE status IN ('delivered','cancelled')`
	}
	query += ` ORDER BY order_date DESC, created_at DESC`

	orders := []*Order{}
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status OrderStatus, actualDelivery *time.Time) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrOrderNotFound
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE manufacturer_orders
SET status=$1, actual_delivery=COALESCE($2, actual_delivery), updated_at=NOW()
WHERE id=$3`, status, actualDelivery, uid)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) SetTracking(ctx context.Context, id string, trackingNumber, carrier, trackingURL string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrOrderNotFound
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE manufacturer_orders
SET tracking_number=$1, carrier=$2, tracking_url=$3, updated_at=NOW()
WHERE id=$4`, trackingNumber, carrier, trackingURL, uid)
	if err != nil {
		return fmt.Errorf("set tracking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ApplyToInventory runs the whole apply as one transaction: lock the
// order row, re-check state, flip the applied marker, credit the
// ledger, mark items received. The marker update carries its own
// IS NULL guard, so even a path that misses the row lock cannot
// credit stock twice.
func (r *postgresRepo) ApplyToInventory(ctx context.Context, id string, received func(*Order) bool) (*ApplyOutcome, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin apply: %w", err)
	}
	defer tx.Rollback()

	var o Order
	err = tx.GetContext(ctx, &o, `
SELECT `+orderColumns+` FROM manufacturer_orders WHERE id=$1 FOR UPDATE`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order %s: %w", id, err)
	}

	if o.InventoryAppliedAt != nil {
		return &ApplyOutcome{Applied: false, Reason: ReasonAlreadyApplied}, nil
	}
	o.Items, err = r.listItems(ctx, tx, o.ID)
	if err != nil {
		return nil, err
	}
	if !received(&o) {
		return &ApplyOutcome{Applied: false, Reason: ReasonNotReceived}, nil
	}

	res, err := tx.ExecContext(ctx, `
UPDATE manufacturer_orders
SET inventory_applied_at=NOW(), updated_at=NOW()
WHERE id=$1 AND inventory_applied_at IS NULL`, uid)
	if err != nil {
		return nil, fmt.Errorf("mark applied: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ApplyOutcome{Applied: false, Reason: ReasonAlreadyApplied}, nil
	}

	reference := "manufacturer_order:" + o.ID.String()
	for _, item := range o.Items {
		if _, err := r.ledger.AdjustTx(ctx, tx, item.SKU, item.QuantityOrdered, reference); err != nil {
			return nil, fmt.Errorf("credit stock for %s: %w", item.SKU, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
UPDATE manufacturer_order_items SET quantity_received=quantity_ordered WHERE order_id=$1`, uid)
	if err != nil {
		return nil, fmt.Errorf("mark items received: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit apply: %w", err)
	}
	return &ApplyOutcome{Applied: true}, nil
}

// ---- helpers ----

func (r *postgresRepo) listItems(ctx context.Context, q sqlx.QueryerContext, orderID uuid.UUID) ([]*OrderItem, error) {
	items := []*OrderItem{}
	err := sqlx.SelectContext(ctx, q, &items, `
SELECT `+itemColumns+` FROM manufacturer_order_items WHERE order_id=$1 ORDER BY sku`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return items, nil
}
