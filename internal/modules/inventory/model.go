package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies where a catalog entry came from.
type Source string

const (
	SourceLocal   Source = "local"
	SourceShopify Source = "shopify"
)

// CatalogEntry is one row of the merged product view. Entries from
// different sources are never deduplicated; the same SKU may appear
// once per source.
type CatalogEntry struct {
	SKU            string          `json:"sku"`
	DisplayID      string          `json:"displayId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Source         Source          `json:"source"`
	QuantityOnHand *int            `json:"quantityOnHand,omitempty"`
	MinStock       int             `json:"minStock"`
}

// StockLedgerEntry is the authoritative local stock record for a SKU.
type StockLedgerEntry struct {
	SKU       string          `json:"sku" db:"sku"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	MinStock  int             `json:"minStock" db:"min_stock"`
	Location  string          `json:"location,omitempty" db:"location"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CatalogEntry projects the ledger row into the merged catalog view.
func (e *StockLedgerEntry) CatalogEntry() CatalogEntry {
	qty := e.Quantity
	return CatalogEntry{
		SKU:            e.SKU,
		DisplayID:      e.SKU,
		Name:           e.Name,
		Price:          e.Price,
		Source:         SourceLocal,
		QuantityOnHand: &qty,
		MinStock:       e.MinStock,
	}
}

// IsLowStock reports whether the entry has fallen to or below its
// reorder threshold. A threshold of zero disables the check.
func (e *StockLedgerEntry) IsLowStock() bool {
	return e.MinStock > 0 && e.Quantity <= e.MinStock
}

// StockMovement is one append-only audit record of a quantity change.
type StockMovement struct {
	ID            string    `json:"id" db:"id"`
	SKU           string    `json:"sku" db:"sku"`
	Delta         int       `json:"delta" db:"delta"`
	QuantityAfter int       `json:"quantityAfter" db:"quantity_after"`
	Reference     string    `json:"reference" db:"reference"`
	Note          string    `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Movement references written by this module.
const (
	RefAdjustment = "adjustment"
	RefRegister   = "register"
	RefOverwrite  = "overwrite"
)

type AdjustRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

type RegisterRequest struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	MinStock int             `json:"minStock"`
	Location string          `json:"location,omitempty"`
}

type OverwriteRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}
