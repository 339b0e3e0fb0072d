package tracking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service defines tracking lookups against the carrier aggregator.
type Service interface {
	Snapshot(ctx context.Context, trackingNumber, carrier, trackingURL string) (*Snapshot, error)
}

type service struct {
	client  CarrierClient
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates a new tracking service. Every lookup is bounded
// by the given timeout so a slow provider cannot stall callers.
func NewService(client CarrierClient, timeout time.Duration, logger *zap.Logger) Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &service{client: client, timeout: timeout, logger: logger}
}

func (s *service) Snapshot(ctx context.Context, trackingNumber, carrier, trackingURL string) (*Snapshot, error) {
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: trackingNumber is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snapshot, err := s.client.Fetch(ctx, trackingNumber, carrier)
	if err != nil {
		s.logger.Warn("tracking lookup failed",
			zap.String("trackingNumber", trackingNumber),
			zap.String("carrier", carrier),
			zap.Error(err))
		return nil, err
	}
	s.logger.Debug("tracking lookup",
		zap.String("trackingNumber", trackingNumber),
		zap.String("status", snapshot.Status))
	return snapshot, nil
}
