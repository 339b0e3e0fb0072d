package manufacturer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opsdeskhq/opsdesk-backend/internal/modules/tracking"
)

// SnapshotFetcher is the slice of the tracking module this service
// needs: one live lookup per order when carrier details are present.
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, trackingNumber, carrier, trackingURL string) (*tracking.Snapshot, error)
}

// Service defines the manufacturer order business logic.
type Service interface {
	// Create validates the request, computes line and order totals,
	// and persists the order atomically.
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// Get retrieves one order with items, decorated with its display
	// status from a live carrier lookup when tracking details exist.
	Get(ctx context.Context, id string) (*OrderView, error)

	// List returns orders for a bucket. Display status is resolved
	// without carrier lookups, so a stored delivered with a tracking
	// number stays conservative until the detail view confirms it.
	List(ctx context.Context, bucket string) ([]*OrderView, error)

	// UpdateStatus moves an order forward through its lifecycle.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	// SetTracking attaches carrier details to an order.
	SetTracking(ctx context.Context, id string, req SetTrackingRequest) (*Order, error)

	// ApplyToInventory credits the order's items to the stock ledger,
	// exactly once, provided the order resolves as received.
	ApplyToInventory(ctx context.Context, id string) (*ApplyResult, error)
}

type service struct {
	repo    Repository
	tracker SnapshotFetcher
	logger  *zap.Logger
}

// NewService creates a new manufacturer order service.
func NewService(repo Repository, tracker SnapshotFetcher, logger *zap.Logger) Service {
	return &service{repo: repo, tracker: tracker, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}

	items := make([]*OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		if line.SKU == "" {
			return nil, fmt.Errorf("%w: item sku is required", ErrInvalidInput)
		}
		if line.QuantityOrdered <= 0 {
			return nil, fmt.Errorf("%w: quantityOrdered must be > 0 for %s", ErrInvalidInput, line.SKU)
		}
		if line.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unitCost cannot be negative for %s", ErrInvalidInput, line.SKU)
		}
		lineTotal := line.UnitCost.Mul(decimal.NewFromInt(int64(line.QuantityOrdered)))
		total = total.Add(lineTotal)
		items = append(items, &OrderItem{
			ID:              uuid.New(),
			SKU:             line.SKU,
			ProductName:     line.ProductName,
			QuantityOrdered: line.QuantityOrdered,
			UnitCost:        line.UnitCost,
			TotalCost:       lineTotal,
		})
	}

	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}
	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber()
	}

	o := &Order{
		ID:               uuid.New(),
		OrderNumber:      orderNumber,
		Status:           StatusPending,
		OrderDate:        orderDate,
		ExpectedDelivery: req.ExpectedDelivery,
		TrackingNumber:   req.TrackingNumber,
		TrackingURL:      req.TrackingURL,
		Carrier:          req.Carrier,
		TotalAmount:      total,
		Notes:            req.Notes,
		Items:            items,
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	s.logger.Info("manufacturer order created",
		zap.String("orderNumber", o.OrderNumber),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.TotalAmount.String()))
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*OrderView, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, o, true), nil
}

func (s *service) List(ctx context.Context, bucket string) ([]*OrderView, error) {
	parsed, err := parseBucket(bucket)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListOrders(ctx, parsed)
	if err != nil {
		return nil, err
	}
	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.view(ctx, o, false))
	}
	return views, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, status) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, o.Status, status)
	}

	var actualDelivery *time.Time
	if status == StatusDelivered {
		now := time.Now().UTC()
		actualDelivery = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, actualDelivery); err != nil {
		return nil, err
	}
	s.logger.Info("manufacturer order status changed",
		zap.String("orderNumber", o.OrderNumber),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)))
	o.Status = status
	if actualDelivery != nil {
		o.ActualDelivery = actualDelivery
	}
	return o, nil
}

func (s *service) SetTracking(ctx context.Context, id string, req SetTrackingRequest) (*Order, error) {
	if req.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: trackingNumber is required", ErrInvalidInput)
	}
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetTracking(ctx, id, req.TrackingNumber, req.Carrier, req.TrackingURL); err != nil {
		return nil, err
	}
	o.TrackingNumber = req.TrackingNumber
	o.Carrier = req.Carrier
	o.TrackingURL = req.TrackingURL
	return o, nil
}

func (s *service) ApplyToInventory(ctx context.Context, id string) (*ApplyResult, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := s.snapshot(ctx, o)

	outcome, err := s.repo.ApplyToInventory(ctx, id, func(current *Order) bool {
		return ResolveDisplayStatus(current, snap) == DisplayReceived
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Applied {
		return &ApplyResult{Applied: false, Message: applyMessage(outcome.Reason)}, nil
	}
	s.logger.Info("manufacturer order applied to inventory",
		zap.String("orderNumber", o.OrderNumber),
		zap.Int("items", len(o.Items)))
	return &ApplyResult{Applied: true}, nil
}

// view decorates an order with display status and bucket. Live
// carrier data is only consulted on detail views; list rendering
// stays local so one screen never fans out into N upstream calls.
func (s *service) view(ctx context.Context, o *Order, live bool) *OrderView {
	var snap *tracking.Snapshot
	if live {
		snap = s.snapshot(ctx, o)
	}
	return &OrderView{Order: o, DisplayStatus: ResolveDisplayStatus(o, snap), Bucket: o.Bucket()}
}

// snapshot does a best-effort carrier lookup. Failures resolve to a
// nil snapshot; the display resolver falls back conservatively.
func (s *service) snapshot(ctx context.Context, o *Order) *tracking.Snapshot {
	if o.TrackingNumber == "" || o.Status == StatusCancelled {
		return nil
	}
	snap, err := s.tracker.Snapshot(ctx, o.TrackingNumber, o.Carrier, o.TrackingURL)
	if err != nil {
		s.logger.Warn("carrier lookup failed, resolving without snapshot",
			zap.String("orderNumber", o.OrderNumber),
			zap.String("trackingNumber", o.TrackingNumber),
			zap.Error(err))
		return nil
	}
	return snap
}

func applyMessage(reason string) string {
	switch reason {
	case ReasonAlreadyApplied:
		return "inventory already applied for this order"
	case ReasonNotReceived:
		return "order has not been received yet"
	default:
		return reason
	}
}

func parseBucket(raw string) (Bucket, error) {
	bucket := Bucket(strings.ToLower(strings.TrimSpace(raw)))
	switch bucket {
	case "", BucketIncoming, BucketPast:
		return bucket, nil
	default:
		return "", fmt.Errorf("%w: unknown bucket %q", ErrInvalidInput, raw)
	}
}

// generateOrderNumber creates a human-readable order number: MO-YYYYMMDD-XXXX
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("MO-%s-%s", date, suffix)
}
