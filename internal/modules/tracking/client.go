package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// CarrierClient fetches live shipment state for a tracking number.
type CarrierClient interface {
	Fetch(ctx context.Context, trackingNumber, carrier string) (*Snapshot, error)
}

// aggregatorClient talks to the multi-carrier tracking aggregator.
// One upstream covers every carrier the shop ships with; the carrier
// name is passed through as a slug.
type aggregatorClient struct {
	client     *resty.Client
	configured bool
}

func NewCarrierClient(baseURL, apiKey string, timeout time.Duration) CarrierClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Tracking-Api-Key", apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(1)
	return &aggregatorClient{
		client:     client,
		configured: baseURL != "" && apiKey != "",
	}
}

type aggregatorEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Location   string    `json:"location"`
}

type aggregatorTracking struct {
	TrackingNumber string            `json:"tracking_number"`
	Status         string            `json:"status"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	Events         []aggregatorEvent `json:"events"`
}

type aggregatorResponse struct {
	Tracking aggregatorTracking `json:"tracking"`
}

func (c *aggregatorClient) Fetch(ctx context.Context, trackingNumber, carrier string) (*Snapshot, error) {
	if !c.configured {
		return nil, fmt.Errorf("%w: tracking api not configured", ErrUpstream)
	}

	req := c.client.R().
		SetContext(ctx).
		SetResult(&aggregatorResponse{})
	if slug := carrierSlug(carrier); slug != "" {
		req.SetQueryParam("carrier", slug)
	}

	resp, err := req.Get("/v1/trackings/" + trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: provider responded %s", ErrUpstream, resp.Status())
	}
	body, ok := resp.Result().(*aggregatorResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response shape", ErrUpstream)
	}

	snapshot := &Snapshot{
		TrackingNumber: body.Tracking.TrackingNumber,
		Status:         NormalizeStatus(body.Tracking.Status),
		Origin:         body.Tracking.Origin,
		Destination:    body.Tracking.Destination,
		Events:         make([]Event, 0, len(body.Tracking.Events)),
	}
	if snapshot.TrackingNumber == "" {
		snapshot.TrackingNumber = trackingNumber
	}
	for _, ev := range body.Tracking.Events {
		snapshot.Events = append(snapshot.Events, Event{
			Timestamp: ev.OccurredAt,
			Status:    NormalizeStatus(ev.Status),
			Message:   ev.Message,
			Location:  ev.Location,
		})
	}
	return snapshot, nil
}

// NormalizeStatus folds the provider's status tags into the lowercase
// tokens the rest of the system keys on. Unknown tags pass through
// lowercased so new provider states degrade gracefully.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending
	case "inforeceived", "info_received":
		return StatusInfoReceived
	case "intransit", "in_transit", "transit":
		return StatusInTransit
	case "outfordelivery", "out_for_delivery":
		return StatusOutForDelivery
	case "delivered":
		return StatusDelivered
	case "attemptfail", "attempt_fail", "failed_attempt":
		return StatusAttemptFail
	case "exception":
		return StatusException
	case "expired":
		return StatusExpired
	case "":
		return ""
	default:
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	}
}

func carrierSlug(carrier string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(carrier)), " ", "-")
}
