package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/service"
)

type nullLedgerStore struct{}

func (nullLedgerStore) Load(ctx context.Context) ([]byte, bool, error) { return nil, false, nil }
func (nullLedgerStore) Save(ctx context.Context, data []byte) error    { return nil }

func newNotificationFixture(t *testing.T) (http.Handler, *notification.Ledger) {
	t.Helper()
	ledger := notification.NewLedger(context.Background(), nullLedgerStore{}, notification.NewBus(), nil, nil)
	h := NewNotificationHandler(service.NewNotificationService(ledger))

	r := chi.NewRouter()
	r.Get("/notifications", h.List)
	r.Post("/notifications", h.Add)
	r.Get("/notifications/unread-count", h.UnreadCount)
	r.Get("/notifications/stream", h.Stream)
	r.Post("/notifications/read-all", h.MarkAllRead)
	r.Post("/notifications/{id}/read", h.MarkRead)
	r.Delete("/notifications", h.ClearAll)
	r.Delete("/notifications/{id}", h.Delete)
	return r, ledger
}

func TestNotificationHandlerListAndFilter(t *testing.T) {
	router, ledger := newNotificationFixture(t)
	ctx := context.Background()

	ledger.Add(ctx, notification.OrderCreated("o1", "Alice", 24.5))
	ledger.Add(ctx, notification.PaymentReceived("o1", 24.5))
	ledger.Add(ctx, notification.OrderStatusChanged("o1", "Confirmed"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Notifications, 3)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?module=orders&limit=1", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Notifications, 1)
	assert.Equal(t, notification.ModuleOrders, listing.Notifications[0].Module)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?type=payment_received", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Notifications, 1)
	assert.Equal(t, notification.TypePaymentReceived, listing.Notifications[0].Type)
}

func TestNotificationHandlerAdd(t *testing.T) {
	router, ledger := newNotificationFixture(t)

	body := strings.NewReader(`{"Type":"order_created","Title":"New Order","Module":"orders"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, ledger.Len())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(`{"Title":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandlerReadFlow(t *testing.T) {
	router, ledger := newNotificationFixture(t)
	ctx := context.Background()

	a := ledger.Add(ctx, notification.OrderCreated("o1", "Alice", 10))
	ledger.Add(ctx, notification.DeliveryAssigned("o2", "Bob"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/"+a.ID+"/read", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ledger.UnreadCount(notification.ModuleAll))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread-count?module=delivery", nil))
	assert.Contains(t, rec.Body.String(), `"unread":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ledger.UnreadCount(notification.ModuleAll))
}

func TestNotificationHandlerDeleteAndClear(t *testing.T) {
	router, ledger := newNotificationFixture(t)
	ctx := context.Background()

	a := ledger.Add(ctx, notification.OrderCreated("o1", "Alice", 10))
	ledger.Add(ctx, notification.OrderCreated("o2", "Bob", 12))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ledger.Len())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ledger.Len())
}

// streamRecorder is a minimal flushable ResponseWriter safe to read while
// the stream handler is still writing.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
	status int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) WriteHeader(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func TestNotificationHandlerStream(t *testing.T) {
	router, ledger := newNotificationFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/notifications/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(rec, req)
	}()

	// Wait for the stream to subscribe before mutating the ledger.
	require.Eventually(t, func() bool {
		return ledger.Bus().Subscribers() == 1
	}, time.Second, 5*time.Millisecond)

	n := ledger.Add(context.Background(), notification.OrderCreated("o1", "Alice", 10))

	require.Eventually(t, func() bool {
		return strings.Contains(rec.Body(), n.ID)
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on disconnect")
	}

	body := rec.Body()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, `"op":"added"`)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, ledger.Bus().Subscribers(), "subscription released on disconnect")
}
