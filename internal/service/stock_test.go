package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/repository"
	"github.com/creamcroissant/ovenboard/internal/storefront"
)

type fakeProductFetcher struct {
	products []storefront.Product
	err      error
}

func (f *fakeProductFetcher) Products(ctx context.Context) ([]storefront.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type memSettings struct {
	values map[string]*repository.Setting
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]*repository.Setting)}
}

func (m *memSettings) Get(ctx context.Context, key string) (*repository.Setting, error) {
	s, ok := m.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSettings) Upsert(ctx context.Context, setting *repository.Setting) error {
	m.values[setting.Key] = setting
	return nil
}

func (m *memSettings) ListByCategory(ctx context.Context, category string) ([]repository.Setting, error) {
	var out []repository.Setting
	for _, s := range m.values {
		if s.Category == category {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSettings) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newStockServiceForTest(fetcher ProductFetcher, threshold int) (StockService, *notification.Ledger, *memSettings) {
	settings := newMemSettings()
	ledger := notification.NewLedger(context.Background(), nullLedgerStore{}, notification.NewBus(), nil, nil)
	return NewStockService(fetcher, settings, ledger, nil, threshold), ledger, settings
}

func TestStockServiceAlertsOncePerDepletion(t *testing.T) {
	fetcher := &fakeProductFetcher{products: []storefront.Product{
		{ID: 1, Name: "Sourdough Loaf", Stock: 2},
		{ID: 2, Name: "Croissant", Stock: 40},
	}}
	svc, ledger, _ := newStockServiceForTest(fetcher, 5)
	ctx := context.Background()

	require.NoError(t, svc.CheckOnce(ctx))
	entries := ledger.List(notification.Filter{Type: notification.TypeLowStock})
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "Sourdough Loaf")
	assert.Equal(t, notification.ModuleInventory, entries[0].Module)

	// A second sweep with unchanged stock stays quiet.
	require.NoError(t, svc.CheckOnce(ctx))
	assert.Len(t, ledger.List(notification.Filter{Type: notification.TypeLowStock}), 1)
}

func TestStockServiceRealertsAfterRecovery(t *testing.T) {
	fetcher := &fakeProductFetcher{products: []storefront.Product{
		{ID: 1, Name: "Sourdough Loaf", Stock: 2},
	}}
	svc, ledger, _ := newStockServiceForTest(fetcher, 5)
	ctx := context.Background()

	require.NoError(t, svc.CheckOnce(ctx))

	// Stock recovers, which clears the alert marker.
	fetcher.products[0].Stock = 20
	require.NoError(t, svc.CheckOnce(ctx))

	// Depleting again raises a fresh alert.
	fetcher.products[0].Stock = 1
	require.NoError(t, svc.CheckOnce(ctx))
	assert.Len(t, ledger.List(notification.Filter{Type: notification.TypeLowStock}), 2)
}

func TestStockServiceFetchError(t *testing.T) {
	svc, _, _ := newStockServiceForTest(&fakeProductFetcher{err: errors.New("down")}, 5)
	assert.Error(t, svc.CheckOnce(context.Background()))
}
