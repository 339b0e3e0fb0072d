package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service defines inventory business logic: the merged catalog view
// and all writes against the local stock ledger.
type Service interface {
	Catalog(ctx context.Context, source string) ([]CatalogEntry, error)
	Adjust(ctx context.Context, req AdjustRequest) (*StockLedgerEntry, error)
	Register(ctx context.Context, req RegisterRequest) (*StockLedgerEntry, error)
	Overwrite(ctx context.Context, sku string, req OverwriteRequest) (*StockLedgerEntry, error)
	Movements(ctx context.Context, sku string) ([]StockMovement, error)
	LowStock(ctx context.Context) ([]StockLedgerEntry, error)
}

type service struct {
	repo    LedgerRepository
	shopify CatalogSource
	logger  *zap.Logger
}

// NewService creates a new inventory service.
func NewService(repo LedgerRepository, shopify CatalogSource, logger *zap.Logger) Service {
	return &service{repo: repo, shopify: shopify, logger: logger}
}

// Catalog returns the merged product view. A Shopify outage degrades
// the merged call to local-only instead of failing it; only an
// explicit source=shopify request surfaces the upstream error.
func (s *service) Catalog(ctx context.Context, source string) ([]CatalogEntry, error) {
	switch source {
	case "", string(SourceLocal), string(SourceShopify):
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
	}

	var local []CatalogEntry
	if source != string(SourceShopify) {
		entries, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		local = make([]CatalogEntry, 0, len(entries))
		for i := range entries {
			local = append(local, entries[i].CatalogEntry())
		}
	}
	if source == string(SourceLocal) {
		return MergeCatalog(local, nil), nil
	}

	shopify, err := s.shopify.Entries(ctx)
	if err != nil {
		if source == string(SourceShopify) {
			return nil, err
		}
		s.logger.Warn("shopify catalog unavailable, serving local only", zap.Error(err))
		shopify = nil
	}
	return MergeCatalog(local, shopify), nil
}

func (s *service) Adjust(ctx context.Context, req AdjustRequest) (*StockLedgerEntry, error) {
	if req.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be a non-zero delta", ErrInvalidInput)
	}
	entry, err := s.repo.CommitAdjustment(ctx, req.SKU, req.Quantity, RefAdjustment, req.Note)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjusted",
		zap.String("sku", entry.SKU),
		zap.Int("delta", req.Quantity),
		zap.Int("quantity", entry.Quantity))
	if entry.IsLowStock() {
		s.logger.Warn("stock at or below reorder threshold",
			zap.String("sku", entry.SKU),
			zap.Int("quantity", entry.Quantity),
			zap.Int("minStock", entry.MinStock))
	}
	return entry, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*StockLedgerEntry, error) {
	if req.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity cannot be negative", ErrInvalidInput)
	}
	if req.MinStock < 0 {
		return nil, fmt.Errorf("%w: minStock cannot be negative", ErrInvalidInput)
	}
	entry := &StockLedgerEntry{
		SKU:      req.SKU,
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		Location: req.Location,
	}
	if err := s.repo.Register(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("sku registered", zap.String("sku", entry.SKU), zap.Int("quantity", entry.Quantity))
	return entry, nil
}

func (s *service) Overwrite(ctx context.Context, sku string, req OverwriteRequest) (*StockLedgerEntry, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	entry, err := s.repo.Overwrite(ctx, sku, req.Quantity, req.Note)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock overwritten",
		zap.String("sku", entry.SKU),
		zap.Int("quantity", entry.Quantity))
	return entry, nil
}

func (s *service) Movements(ctx context.Context, sku string) ([]StockMovement, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	return s.repo.Movements(ctx, sku)
}

func (s *service) LowStock(ctx context.Context) ([]StockLedgerEntry, error) {
	return s.repo.ListLowStock(ctx)
}
