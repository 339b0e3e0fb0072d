package manufacturer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the stored lifecycle state of a manufacturer order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// DisplayStatus is what the console shows for an order. It folds the
// stored status together with live carrier data, so it can disagree
// with the stored status when the carrier knows more.
type DisplayStatus string

const (
	DisplayOrdered   DisplayStatus = "ordered"
	DisplayShipped   DisplayStatus = "shipped"
	DisplayReceived  DisplayStatus = "received"
	DisplayCancelled DisplayStatus = "cancelled"
)

// Bucket groups orders for the console's two-tab layout.
type Bucket string

const (
	BucketIncoming Bucket = "incoming"
	BucketPast     Bucket = "past"
)

// Order is a purchase order placed with the shop's manufacturer.
type Order struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	OrderNumber        string          `json:"orderNumber" db:"order_number"`
	Status             OrderStatus     `json:"status" db:"status"`
	OrderDate          time.Time       `json:"orderDate" db:"order_date"`
	ExpectedDelivery   *time.Time      `json:"expectedDelivery,omitempty" db:"expected_delivery"`
	ActualDelivery     *time.Time      `json:"actualDelivery,omitempty" db:"actual_delivery"`
	TrackingNumber     string          `json:"trackingNumber,omitempty" db:"tracking_number"`
	TrackingURL        string          `json:"trackingUrl,omitempty" db:"tracking_url"`
	Carrier            string          `json:"carrier,omitempty" db:"carrier"`
	TotalAmount        decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Notes              string          `json:"notes,omitempty" db:"notes"`
	InventoryAppliedAt *time.Time      `json:"inventoryAppliedAt,omitempty" db:"inventory_applied_at"`
	Items              []*OrderItem    `json:"items,omitempty" db:"-"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsTerminal reports whether the order has left the active lifecycle.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// Bucket returns the console tab the order belongs to, keyed on the
// stored status so an order never hops tabs just because a carrier
// lookup failed.
func (o *Order) Bucket() Bucket {
	if o.IsTerminal() {
		return BucketPast
	}
	return BucketIncoming
}

// OrderItem is one product line on a manufacturer order.
type OrderItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderID          uuid.UUID       `json:"orderId" db:"order_id"`
	SKU              string          `json:"sku" db:"sku"`
	ProductName      string          `json:"productName" db:"product_name"`
	QuantityOrdered  int             `json:"quantityOrdered" db:"quantity_ordered"`
	QuantityReceived int             `json:"quantityReceived" db:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unitCost" db:"unit_cost"`
	TotalCost        decimal.Decimal `json:"totalCost" db:"total_cost"`
}

// OrderView decorates an order with its resolved display state.
type OrderView struct {
	*Order
	DisplayStatus DisplayStatus `json:"displayStatus"`
	Bucket        Bucket        `json:"bucket"`
}

// ApplyResult reports the outcome of apply-to-inventory. Applied is
// false when the call was a no-op; Message says why.
type ApplyResult struct {
	Applied bool   `json:"applied"`
	Message string `json:"message,omitempty"`
}

type CreateItemRequest struct {
	SKU             string          `json:"sku"`
	ProductName     string          `json:"productName"`
	QuantityOrdered int             `json:"quantityOrdered"`
	UnitCost        decimal.Decimal `json:"unitCost"`
}

type CreateOrderRequest struct {
	OrderNumber      string              `json:"orderNumber,omitempty"`
	OrderDate        *time.Time          `json:"orderDate,omitempty"`
	ExpectedDelivery *time.Time          `json:"expectedDelivery,omitempty"`
	TrackingNumber   string              `json:"trackingNumber,omitempty"`
	TrackingURL      string              `json:"trackingUrl,omitempty"`
	Carrier          string              `json:"carrier,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	Items            []CreateItemRequest `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SetTrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
}
