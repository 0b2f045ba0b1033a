package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alessacloud/internal/audit"
	"alessacloud/internal/data"
	"alessacloud/internal/events"
	"alessacloud/internal/models"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// stubOrderRepo is a fixed-data order store for handler tests
type stubOrderRepo struct {
	open []*models.Order
	byID map[uuid.UUID]*models.Order
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	return nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.byID[id]; ok && o.TenantID == tenantID {
		return o, nil
	}
	return nil, data.ErrNotFound
}

func (s *stubOrderRepo) GetByShortID(ctx context.Context, tenantID uuid.UUID, shortID string) (*models.Order, error) {
	return nil, data.ErrNotFound
}

func (s *stubOrderRepo) List(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, page, pageSize int) ([]*models.Order, int, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error) {
	return s.open, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to models.OrderStatus) error {
	if o, ok := s.byID[id]; ok && o.TenantID == tenantID {
		o.Status = to
	}
	return nil
}

func (s *stubOrderRepo) SetPaymentRef(ctx context.Context, tenantID, id uuid.UUID, ref string) error {
	if o, ok := s.byID[id]; ok && o.TenantID == tenantID {
		o.PaymentRef = ref
	}
	return nil
}

// streamRecorder is a ResponseWriter for streaming handlers. The standard
// httptest recorder lacks CloseNotify, and its body is not safe to read
// while the handler goroutine is still writing.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	status int
	gone   chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{
		header: make(http.Header),
		gone:   make(chan bool),
	}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = code
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.gone }

func (r *streamRecorder) BodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func newStreamEngine(h *StreamHandlers, t *models.Tenant) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/stream", func(c *gin.Context) {
		c.Set(tenant.ContextKey, t)
	}, h.OrderStream)

	return engine
}

func TestOrderStreamInitThenDeltas(t *testing.T) {
	tn := &models.Tenant{ID: uuid.New(), Slug: "pizza", Status: models.TenantStatusActive}

	openOrder := &models.Order{ID: uuid.New(), TenantID: tn.ID, ShortID: "feed01", Status: models.OrderStatusConfirmed}
	repo := &stubOrderRepo{open: []*models.Order{openOrder}}

	broker := events.NewMemoryBroker(nil)
	defer broker.Close()

	orderSvc := services.NewOrderService(repo, nil, nil, broker, audit.NewService(nil), nil, nil)
	engine := newStreamEngine(NewStreamHandlers(orderSvc, broker), tn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		engine.ServeHTTP(rec, req)
		close(done)
	}()

	// The handler subscribes before reading the snapshot, so once the
	// subscription shows up no event can be lost.
	require.Eventually(t, func() bool {
		return broker.SubscriberCount(tn.ID) == 1
	}, time.Second, 5*time.Millisecond)

	delta, err := events.NewEvent(events.TypeStatusChanged,
		&models.Order{ID: openOrder.ID, TenantID: tn.ID, ShortID: "feed01", Status: models.OrderStatusPreparing})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(context.Background(), tn.ID, delta))

	require.Eventually(t, func() bool {
		return strings.Contains(rec.BodyString(), "event: "+events.TypeStatusChanged)
	}, time.Second, 5*time.Millisecond)

	// Client disconnect ends the stream and releases the subscription.
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not stop after client disconnect")
	}

	assert.Eventually(t, func() bool {
		return broker.SubscriberCount(tn.ID) == 0
	}, time.Second, 5*time.Millisecond)

	body := rec.BodyString()
	initIdx := strings.Index(body, "event: "+events.TypeInit)
	deltaIdx := strings.Index(body, "event: "+events.TypeStatusChanged)

	require.NotEqual(t, -1, initIdx, "init snapshot missing")
	require.NotEqual(t, -1, deltaIdx, "delta missing")
	assert.Less(t, initIdx, deltaIdx, "init snapshot must precede deltas")

	assert.Contains(t, body, "feed01")
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestOrderStreamIgnoresOtherTenants(t *testing.T) {
	tn := &models.Tenant{ID: uuid.New(), Slug: "pizza", Status: models.TenantStatusActive}
	repo := &stubOrderRepo{}

	broker := events.NewMemoryBroker(nil)
	defer broker.Close()

	orderSvc := services.NewOrderService(repo, nil, nil, broker, audit.NewService(nil), nil, nil)
	engine := newStreamEngine(NewStreamHandlers(orderSvc, broker), tn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		engine.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return broker.SubscriberCount(tn.ID) == 1
	}, time.Second, 5*time.Millisecond)

	other, err := events.NewEvent(events.TypeOrderCreated,
		&models.Order{ID: uuid.New(), ShortID: "other1"})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(context.Background(), uuid.New(), other))

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.NotContains(t, rec.BodyString(), "other1")
}
