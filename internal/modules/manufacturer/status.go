package manufacturer

import (
	"fmt"
	"strings"

	"github.com/opsdeskhq/opsdesk-backend/internal/modules/tracking"
)

// validTransitions defines the allowed status state machine. Orders
// only move forward; skips happen when carrier syncs outpace manual
// updates. Cancellation is allowed from any non-terminal state.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one stored
// status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseStatus validates a raw status token from a request.
func ParseStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
}

// ResolveDisplayStatus decides what the console shows for an order.
//
// Live carrier data outranks the stored status: a snapshot saying
// delivered shows received even if nobody marked the order delivered,
// and a snapshot saying in transit shows shipped. When the order has a
// tracking number but no snapshot could be fetched, the stored status
// is only trusted up to shipped; a stored delivered without carrier
// confirmation stays ordered rather than telling the owner stock has
// arrived when it may not have. Orders without a tracking number have
// no carrier to consult, so their stored status is taken at face
// value. Cancellation always wins.
func ResolveDisplayStatus(o *Order, snap *tracking.Snapshot) DisplayStatus {
	if o.Status == StatusCancelled {
		return DisplayCancelled
	}

	if snap != nil && snap.Status != "" {
		switch strings.ToLower(strings.TrimSpace(snap.Status)) {
		case tracking.StatusDelivered:
			return DisplayReceived
		case tracking.StatusInTransit, tracking.StatusOutForDelivery:
			return DisplayShipped
		default:
			return DisplayOrdered
		}
	}

	if o.TrackingNumber != "" {
		if o.Status == StatusShipped {
			return DisplayShipped
		}
		return DisplayOrdered
	}

	switch o.Status {
	case StatusDelivered:
		return DisplayReceived
	case StatusShipped:
		return DisplayShipped
	default:
		return DisplayOrdered
	}
}
