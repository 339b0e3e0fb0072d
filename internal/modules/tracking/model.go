package tracking

import "time"

// Snapshot is the normalized view of a shipment as last reported by
// the carrier aggregator. Status tokens are lowercase snake_case.
type Snapshot struct {
	TrackingNumber string  `json:"trackingNumber"`
	Status         string  `json:"status"`
	Origin         string  `json:"origin,omitempty"`
	Destination    string  `json:"destination,omitempty"`
	Events         []Event `json:"events"`
}

// Event is one checkpoint in a shipment's history, newest first.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Location  string    `json:"location,omitempty"`
}

// Carrier status tokens the rest of the system keys on.
const (
	StatusPending        = "pending"
	StatusInfoReceived   = "info_received"
	StatusInTransit      = "in_transit"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusAttemptFail    = "attempt_fail"
	StatusException      = "exception"
	StatusExpired        = "expired"
)

type LookupRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
}
