package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/ovenboard/internal/deal"
	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/order"
	"github.com/creamcroissant/ovenboard/internal/repository"
)

type fakeOrderFetcher struct {
	orders    map[string]*order.Order
	listErr   error
	getErr    error
	updateErr error
	updated   []order.Status
}

func (f *fakeOrderFetcher) ListOrders(ctx context.Context, limit int) ([]order.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]order.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderFetcher) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderFetcher) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, status)
	if o, ok := f.orders[id]; ok {
		o.Status = status
	}
	return nil
}

type staticDeals struct {
	deals []deal.Deal
}

func (s staticDeals) Snapshot(ctx context.Context) []deal.Deal { return s.deals }
func (s staticDeals) Invalidate(ctx context.Context)           {}

type fakeStatusLogs struct {
	entries []*repository.OrderStatusLog
}

func (f *fakeStatusLogs) Append(ctx context.Context, entry *repository.OrderStatusLog) error {
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStatusLogs) ListByOrder(ctx context.Context, orderID string, limit int) ([]*repository.OrderStatusLog, error) {
	var out []*repository.OrderStatusLog
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].OrderID == orderID {
			out = append(out, f.entries[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStatusLogs) LastByOrder(ctx context.Context, orderID string) (*repository.OrderStatusLog, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].OrderID == orderID {
			return f.entries[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStatusLogs) CountBackward(ctx context.Context) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if e.Backward {
			n++
		}
	}
	return n, nil
}

type nullLedgerStore struct{}

func (nullLedgerStore) Load(ctx context.Context) ([]byte, bool, error) { return nil, false, nil }
func (nullLedgerStore) Save(ctx context.Context, data []byte) error    { return nil }

func newOrderServiceForTest(fetcher *fakeOrderFetcher, deals []deal.Deal, logs *fakeStatusLogs) (OrderService, *notification.Ledger) {
	ledger := notification.NewLedger(context.Background(), nullLedgerStore{}, notification.NewBus(), nil, nil)
	svc := NewOrderService(
		fetcher,
		staticDeals{deals: deals},
		logs,
		ledger,
		order.NewEstimator(nil, nil),
		deal.NewClassifier(nil, nil, 0),
		nil,
	)
	return svc, ledger
}

func sampleOrder(id string, status order.Status) *order.Order {
	return &order.Order{
		ID:        id,
		Status:    status,
		Customer:  "Alice",
		TotalDue:  24.5,
		CreatedAt: "2025-01-01T10:00:00Z",
		UpdatedAt: "2025-01-01T10:40:00Z",
		Items: []order.LineItem{
			{ProductID: "7", Name: "Croissant Box", Price: "20.00", Quantity: 1},
			{ProductID: "12", Name: "Birthday Candle Add-on", Price: "4.50", Quantity: 1},
		},
	}
}

func TestOrderServiceGetBuildsView(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusPreparing),
	}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	view, err := svc.Get(context.Background(), "o1")
	require.NoError(t, err)

	assert.Equal(t, "o1", view.ID)
	assert.Equal(t, order.StatusPreparing, view.Status)
	assert.Equal(t, "Preparing", view.StatusLabel)
	assert.Empty(t, view.StatusError)
	require.Len(t, view.Timeline, order.StageCount())

	// Current stage carries the recorded update time.
	current := view.Timeline[2]
	require.NotNil(t, current.Time)
	assert.True(t, current.Exact)
	assert.True(t, current.Time.Equal(time.Date(2025, 1, 1, 10, 40, 0, 0, time.UTC)))

	// Future stages have no time yet.
	assert.Nil(t, view.Timeline[3].Time)
	assert.Nil(t, view.Timeline[4].Time)

	// The add-on item classifies as a deal by heuristic, the box does not.
	require.Len(t, view.Items, 2)
	assert.False(t, view.Items[0].IsDeal)
	assert.True(t, view.Items[1].IsDeal)
}

func TestOrderServiceGetUnknownStatus(t *testing.T) {
	o := sampleOrder("o1", order.Status("shipped"))
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{"o1": o}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	view, err := svc.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.NotEmpty(t, view.StatusError)
	assert.Equal(t, "shipped", view.StatusLabel)
	assert.Empty(t, view.Timeline, "no timeline for an unrecognized status")
}

func TestOrderServiceGetNotFound(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderServiceGetUpstreamError(t *testing.T) {
	fetcher := &fakeOrderFetcher{getErr: errors.New("boom")}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	_, err := svc.Get(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestOrderServiceUpdateStatus(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusConfirmed),
	}}
	logs := &fakeStatusLogs{}
	svc, ledger := newOrderServiceForTest(fetcher, nil, logs)
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, "o1", order.StatusPreparing))
	require.Len(t, fetcher.updated, 1)
	assert.Equal(t, order.StatusPreparing, fetcher.updated[0])

	// The transition is audited and announced.
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "confirmed", logs.entries[0].FromStatus)
	assert.Equal(t, "preparing", logs.entries[0].ToStatus)
	assert.False(t, logs.entries[0].Backward)

	entries := ledger.List(notification.Filter{Type: notification.TypeOrderStatusChanged})
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "o1")
	assert.Contains(t, entries[0].Message, "Preparing")
}

func TestOrderServiceUpdateStatusRejectsBackward(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusReady),
	}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	err := svc.UpdateStatus(context.Background(), "o1", order.StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, fetcher.updated)
}

func TestOrderServiceUpdateStatusNoop(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusReady),
	}}
	logs := &fakeStatusLogs{}
	svc, ledger := newOrderServiceForTest(fetcher, nil, logs)

	require.NoError(t, svc.UpdateStatus(context.Background(), "o1", order.StatusReady))
	assert.Empty(t, fetcher.updated)
	assert.Empty(t, logs.entries)
	assert.Equal(t, 0, ledger.Len())
}

func TestOrderServiceUpdateStatusUnknownTarget(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusReady),
	}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})

	err := svc.UpdateStatus(context.Background(), "o1", order.Status("shipped"))
	assert.ErrorIs(t, err, order.ErrUnknownStatus)
}

func TestOrderServiceAuthoritativeClassification(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusConfirmed),
	}}
	deals := []deal.Deal{{ID: 1, ProductID: 7, Price: 20.0, Active: true}}
	svc, _ := newOrderServiceForTest(fetcher, deals, &fakeStatusLogs{})

	view, err := svc.Get(context.Background(), "o1")
	require.NoError(t, err)
	// With an active deal matching product 7 at 20.00, the box is now a
	// deal and the candle add-on is an authoritative no-match.
	assert.True(t, view.Items[0].IsDeal)
	assert.False(t, view.Items[1].IsDeal)
}

func TestOrderServiceSyncStatusLogRecordsObservedChange(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusConfirmed),
	}}
	logs := &fakeStatusLogs{}
	svc, _ := newOrderServiceForTest(fetcher, nil, logs)
	ctx := context.Background()

	_, err := svc.Get(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "", logs.entries[0].FromStatus)
	assert.Equal(t, "confirmed", logs.entries[0].ToStatus)

	// Same status again does not duplicate the audit row.
	_, err = svc.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, logs.entries, 1)

	// The storefront moving the order backward is recorded and flagged.
	fetcher.orders["o1"].Status = order.StatusPending
	_, err = svc.Get(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, logs.entries, 2)
	assert.True(t, logs.entries[1].Backward)

	n, err := logs.CountBackward(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOrderServicePendingElapsed(t *testing.T) {
	fetcher := &fakeOrderFetcher{orders: map[string]*order.Order{
		"o1": sampleOrder("o1", order.StatusPending),
		"o2": sampleOrder("o2", order.StatusReady),
	}}
	svc, _ := newOrderServiceForTest(fetcher, nil, &fakeStatusLogs{})
	ctx := context.Background()

	elapsed, pending, err := svc.PendingElapsed(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NotEmpty(t, elapsed)

	_, pending, err = svc.PendingElapsed(ctx, "o2")
	require.NoError(t, err)
	assert.False(t, pending)
}
