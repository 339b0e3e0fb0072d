package inventory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLedgerRepo keeps the ledger in memory behind one lock, so the
// additivity of concurrent adjustments can be exercised without a
// database.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries map[string]*StockLedgerEntry
	moves   []StockMovement
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: map[string]*StockLedgerEntry{}}
}

func (f *fakeLedgerRepo) seed(sku string, quantity, minStock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.entries[sku] = &StockLedgerEntry{
		SKU:       sku,
		Name:      "Item " + sku,
		Price:     decimal.RequireFromString("9.99"),
		Quantity:  quantity,
		MinStock:  minStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *fakeLedgerRepo) List(ctx context.Context) ([]StockLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []StockLedgerEntry{}
	for _, e := range f.entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SKU < entries[j].SKU })
	return entries, nil
}

func (f *fakeLedgerRepo) Get(ctx context.Context, sku string) (*StockLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[sku]
	if !ok {
		return nil, ErrSKUNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeLedgerRepo) Register(ctx context.Context, entry *StockLedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.SKU]; ok {
		return ErrSKUExists
	}
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	copied := *entry
	f.entries[entry.SKU] = &copied
	if entry.Quantity != 0 {
		f.record(entry.SKU, entry.Quantity, entry.Quantity, RefRegister, "")
	}
	return nil
}

func (f *fakeLedgerRepo) CommitAdjustment(ctx context.Context, sku string, delta int, reference, note string) (*StockLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[sku]
	if !ok {
		return nil, ErrSKUNotFound
	}
	e.Quantity += delta
	e.UpdatedAt = time.Now()
	f.record(sku, delta, e.Quantity, reference, note)
	copied := *e
	return &copied, nil
}

func (f *fakeLedgerRepo) Overwrite(ctx context.Context, sku string, quantity int, note string) (*StockLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[sku]
	if !ok {
		return nil, ErrSKUNotFound
	}
	if delta := quantity - e.Quantity; delta != 0 {
		f.record(sku, delta, quantity, RefOverwrite, note)
	}
	e.Quantity = quantity
	e.UpdatedAt = time.Now()
	copied := *e
	return &copied, nil
}

func (f *fakeLedgerRepo) Movements(ctx context.Context, sku string) ([]StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[sku]; !ok {
		return nil, ErrSKUNotFound
	}
	moves := []StockMovement{}
	for _, m := range f.moves {
		if m.SKU == sku {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

func (f *fakeLedgerRepo) ListLowStock(ctx context.Context) ([]StockLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []StockLedgerEntry{}
	for _, e := range f.entries {
		if e.IsLowStock() {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (f *fakeLedgerRepo) record(sku string, delta, after int, reference, note string) {
	f.moves = append(f.moves, StockMovement{
		ID:            uuid.NewString(),
		SKU:           sku,
		Delta:         delta,
		QuantityAfter: after,
		Reference:     reference,
		Note:          note,
		CreatedAt:     time.Now(),
	})
}

type fakeCatalogSource struct {
	entries []CatalogEntry
	err     error
	calls   atomic.Int32
}

func (f *fakeCatalogSource) Entries(ctx context.Context) ([]CatalogEntry, error) {
	f.calls.Add(1)
	return f.entries, f.err
}

func newTestService(repo LedgerRepository, source CatalogSource) Service {
	return NewService(repo, source, zap.NewNop())
}

func TestCatalog_MergesLocalAndShopify(t *testing.T) {
	// Arrange
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 5, 0)
	repo.seed("LEG-200", 2, 0)
	source := &fakeCatalogSource{entries: []CatalogEntry{shopifyEntry("SEAT-300", "shopify-111")}}
	svc := newTestService(repo, source)

	// Act
	entries, err := svc.Catalog(context.Background(), "")

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "ARM-100", entries[0].SKU)
	assert.Equal(t, SourceLocal, entries[0].Source)
	require.NotNil(t, entries[0].QuantityOnHand)
	assert.Equal(t, 5, *entries[0].QuantityOnHand)
	assert.Equal(t, SourceShopify, entries[2].Source)
}

func TestCatalog_ShopifyOutageDegradesToLocal(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 5, 0)
	source := &fakeCatalogSource{err: ErrShopifyUnavailable}
	svc := newTestService(repo, source)

	entries, err := svc.Catalog(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, SourceLocal, entries[0].Source)
}

func TestCatalog_LocalFilterSkipsShopify(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 5, 0)
	source := &fakeCatalogSource{entries: []CatalogEntry{shopifyEntry("SEAT-300", "shopify-111")}}
	svc := newTestService(repo, source)

	entries, err := svc.Catalog(context.Background(), "local")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int32(0), source.calls.Load())
}

func TestCatalog_ShopifyFilterPropagatesOutage(t *testing.T) {
	repo := newFakeLedgerRepo()
	source := &fakeCatalogSource{err: ErrShopifyUnavailable}
	svc := newTestService(repo, source)

	_, err := svc.Catalog(context.Background(), "shopify")

	assert.ErrorIs(t, err, ErrShopifyUnavailable)
}

func TestCatalog_RejectsUnknownSource(t *testing.T) {
	svc := newTestService(newFakeLedgerRepo(), &fakeCatalogSource{})

	_, err := svc.Catalog(context.Background(), "etsy")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdjust_AppliesSignedDelta(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 10, 0)
	svc := newTestService(repo, &fakeCatalogSource{})

	entry, err := svc.Adjust(context.Background(), AdjustRequest{SKU: "ARM-100", Quantity: -3})

	require.NoError(t, err)
	assert.Equal(t, 7, entry.Quantity)
	moves, err := svc.Movements(context.Background(), "ARM-100")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, -3, moves[0].Delta)
	assert.Equal(t, 7, moves[0].QuantityAfter)
	assert.Equal(t, RefAdjustment, moves[0].Reference)
}

func TestAdjust_Validation(t *testing.T) {
	svc := newTestService(newFakeLedgerRepo(), &fakeCatalogSource{})

	_, err := svc.Adjust(context.Background(), AdjustRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Adjust(context.Background(), AdjustRequest{SKU: "ARM-100"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdjust_UnknownSKU(t *testing.T) {
	svc := newTestService(newFakeLedgerRepo(), &fakeCatalogSource{})

	_, err := svc.Adjust(context.Background(), AdjustRequest{SKU: "GHOST-1", Quantity: 1})

	assert.ErrorIs(t, err, ErrSKUNotFound)
}

func TestAdjust_ConcurrentDeltasAreAdditive(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 50, 0)
	svc := newTestService(repo, &fakeCatalogSource{})

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Adjust(context.Background(), AdjustRequest{SKU: "ARM-100", Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entry, err := repo.Get(context.Background(), "ARM-100")
	require.NoError(t, err)
	assert.Equal(t, 90, entry.Quantity)
}

func TestRegister_PersistsEntryAndOpeningMovement(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo, &fakeCatalogSource{})

	entry, err := svc.Register(context.Background(), RegisterRequest{
		SKU:      "ARM-100",
		Name:     "Armrest",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 50,
		MinStock: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 50, entry.Quantity)
	moves, err := svc.Movements(context.Background(), "ARM-100")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, RefRegister, moves[0].Reference)
	assert.Equal(t, 50, moves[0].Delta)
}

func TestRegister_DuplicateSKU(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 1, 0)
	svc := newTestService(repo, &fakeCatalogSource{})

	_, err := svc.Register(context.Background(), RegisterRequest{SKU: "ARM-100", Name: "Armrest"})

	assert.ErrorIs(t, err, ErrSKUExists)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(newFakeLedgerRepo(), &fakeCatalogSource{})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing sku", RegisterRequest{Name: "Armrest"}},
		{"missing name", RegisterRequest{SKU: "ARM-100"}},
		{"negative price", RegisterRequest{SKU: "ARM-100", Name: "Armrest", Price: decimal.RequireFromString("-1")}},
		{"negative quantity", RegisterRequest{SKU: "ARM-100", Name: "Armrest", Quantity: -1}},
		{"negative minStock", RegisterRequest{SKU: "ARM-100", Name: "Armrest", MinStock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestOverwrite_SetsAbsoluteQuantity(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 10, 0)
	svc := newTestService(repo, &fakeCatalogSource{})

	entry, err := svc.Overwrite(context.Background(), "ARM-100", OverwriteRequest{Quantity: 4, Note: "stocktake"})

	require.NoError(t, err)
	assert.Equal(t, 4, entry.Quantity)
	moves, err := svc.Movements(context.Background(), "ARM-100")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, -6, moves[0].Delta)
	assert.Equal(t, RefOverwrite, moves[0].Reference)
	assert.Equal(t, "stocktake", moves[0].Note)
}

func TestMovements_UnknownSKU(t *testing.T) {
	svc := newTestService(newFakeLedgerRepo(), &fakeCatalogSource{})

	_, err := svc.Movements(context.Background(), "GHOST-1")

	assert.ErrorIs(t, err, ErrSKUNotFound)
}

func TestLowStock_FiltersByThreshold(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.seed("ARM-100", 3, 5)  // below threshold
	repo.seed("LEG-200", 20, 5) // healthy
	repo.seed("SEAT-300", 0, 0) // threshold disabled
	svc := newTestService(repo, &fakeCatalogSource{})

	entries, err := svc.LowStock(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ARM-100", entries[0].SKU)
}
