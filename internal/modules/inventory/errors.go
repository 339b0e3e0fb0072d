package inventory

import "errors"

var (
	// ErrInvalidInput marks request payloads that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSKUNotFound is returned when a SKU has no ledger entry.
	ErrSKUNotFound = errors.New("sku not found")

	// ErrSKUExists is returned when registering a SKU that is
	// already tracked.
	ErrSKUExists = errors.New("sku already registered")

	// ErrStockFloor is returned when negative stock is disabled and
	// a change would take the on-hand quantity below zero.
	ErrStockFloor = errors.New("stock cannot fall below zero")

	// ErrShopifyUnavailable is returned when the Shopify catalog
	// cannot be fetched.
	ErrShopifyUnavailable = errors.New("shopify catalog unavailable")
)
