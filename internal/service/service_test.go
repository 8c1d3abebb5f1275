package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"woostore/storefront/internal/client"
	"woostore/storefront/internal/config"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/domain/event"
	"woostore/storefront/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu         sync.Mutex
	totalPages int
	perPage    int
	failPage   int
	requested  []int
	createErr  error
	created    []*domain.OrderDocument
}

func (c *fakeClient) GetProducts(_ context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	c.mu.Lock()
	c.requested = append(c.requested, q.Page)
	c.mu.Unlock()

	if q.Page == c.failPage {
		return nil, &client.UpstreamError{Operation: "get_products", StatusCode: 502}
	}
	products := make([]domain.Product, c.perPage)
	for i := range products {
		products[i] = domain.Product{ID: int64(q.Page*1000 + i), Name: "p", Price: "1.00", Status: q.Status}
	}
	return &domain.ProductPage{Products: products, Page: q.Page, TotalPages: c.totalPages}, nil
}

func (c *fakeClient) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, nil
}

func (c *fakeClient) GetCategories(context.Context, domain.CategoryQuery) ([]domain.Category, error) {
	return nil, nil
}

func (c *fakeClient) CreateOrder(_ context.Context, doc *domain.OrderDocument) (*domain.Order, error) {
	c.created = append(c.created, doc)
	if c.createErr != nil {
		return nil, c.createErr
	}
	return &domain.Order{ID: 900, Number: "900", Status: "pending", Total: "25.00"}, nil
}

type fakeRepository struct {
	mu       sync.Mutex
	saved    map[int64]domain.Product
	countErr error
}

func (r *fakeRepository) SaveProducts(_ context.Context, products []domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[int64]domain.Product)
	}
	for _, p := range products {
		r.saved[p.ID] = p
	}
	return nil
}

func (r *fakeRepository) CountProducts(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.saved), nil
}

type fakeState struct {
	mu      sync.Mutex
	page    int
	history []int
}

func (s *fakeState) GetLastSyncedPage(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, nil
}

func (s *fakeState) SetLastSyncedPage(_ context.Context, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.history = append(s.history, page)
	return nil
}

func TestSyncAll_FromScratch(t *testing.T) {
	c := &fakeClient{totalPages: 7, perPage: 3}
	repo := &fakeRepository{}
	st := &fakeState{}
	svc := NewSyncService(c, repo, st, 3, 2, 100)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.FromPage)
	assert.Equal(t, 7, result.TotalPages)
	assert.Equal(t, 21, result.Products)
	assert.Equal(t, 21, result.Stored)
	assert.Equal(t, 1, st.page, "progress resets after a complete sync")
	assert.Len(t, c.requested, 7)
	for _, p := range repo.saved {
		assert.Equal(t, "publish", p.Status)
	}
}

func TestSyncAll_ResumesFromSavedPage(t *testing.T) {
	c := &fakeClient{totalPages: 5, perPage: 2}
	st := &fakeState{page: 4}
	svc := NewSyncService(c, &fakeRepository{}, st, 2, 10, 100)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.FromPage)
	assert.ElementsMatch(t, []int{4, 5}, c.requested)
	assert.Equal(t, 4, result.Products)
}

func TestSyncAll_StoredCountsWholeTable(t *testing.T) {
	repo := &fakeRepository{saved: map[int64]domain.Product{9001: {ID: 9001}, 9002: {ID: 9002}}}
	svc := NewSyncService(&fakeClient{totalPages: 2, perPage: 3}, repo, &fakeState{}, 2, 1, 100)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result.Products)
	assert.Equal(t, 8, result.Stored)
}

func TestSyncAll_CountFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepository{countErr: errors.New("connection reset")}
	st := &fakeState{page: 3}
	svc := NewSyncService(&fakeClient{totalPages: 2, perPage: 3}, repo, st, 2, 1, 100)

	result, err := svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -1, result.Stored)
	assert.Equal(t, 1, st.page)
}

func TestSyncAll_FailureSavesWatermark(t *testing.T) {
	c := &fakeClient{totalPages: 6, perPage: 1, failPage: 4}
	st := &fakeState{}
	svc := NewSyncService(c, &fakeRepository{}, st, 1, 100, 100)

	_, err := svc.SyncAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 502, client.StatusCode(err))
	assert.Equal(t, 4, st.page, "next sync starts at the failed page")
}

func TestProgress_OutOfOrder(t *testing.T) {
	p := newProgress(1)
	p.done(1, 1)
	p.done(3, 1)
	assert.Equal(t, 2, p.watermark())
	p.done(2, 1)
	assert.Equal(t, 4, p.watermark())
}

type recordingStream struct {
	published []event.Event
	err       error
}

func (s *recordingStream) Publish(_ context.Context, e event.Event) (string, error) {
	s.published = append(s.published, e)
	return "1-0", s.err
}

func (s *recordingStream) Read(context.Context, string, string, time.Duration) (*redis.XMessage, error) {
	return nil, nil
}

func (s *recordingStream) Ack(context.Context, string, string) error { return nil }

func (s *recordingStream) EnsureStream(context.Context, string) error { return nil }

func orderDoc() *domain.OrderDocument {
	return &domain.OrderDocument{
		PaymentMethod: domain.PaymentMethodCOD,
		LineItems: []domain.OrderLineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestOrderService_Submit(t *testing.T) {
	c := &fakeClient{}
	stream := &recordingStream{}
	svc := NewOrderService(c, stream)

	order, err := svc.Submit(context.Background(), orderDoc())
	require.NoError(t, err)
	assert.Equal(t, int64(900), order.ID)

	require.Len(t, stream.published, 1)
	placed := stream.published[0].(*event.OrderPlaced)
	assert.Equal(t, int64(900), placed.OrderID)
	assert.Equal(t, 3, placed.ItemCount)
	assert.Equal(t, "25.00", placed.Total)
}

func TestOrderService_ResetsPrivilegedFields(t *testing.T) {
	c := &fakeClient{}
	svc := NewOrderService(c, nil)

	doc := orderDoc()
	doc.SetPaid = true
	doc.Status = "completed"
	doc.CustomerID = 42

	_, err := svc.Submit(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, c.created, 1)
	assert.False(t, c.created[0].SetPaid)
	assert.Equal(t, "pending", c.created[0].Status)
	assert.Equal(t, int64(0), c.created[0].CustomerID)
}

func TestOrderService_EmptyCart(t *testing.T) {
	c := &fakeClient{}
	svc := NewOrderService(c, nil)

	_, err := svc.Submit(context.Background(), &domain.OrderDocument{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, c.created)
}

func TestOrderService_UpstreamFailure(t *testing.T) {
	c := &fakeClient{createErr: &client.UpstreamError{Operation: "create_order", StatusCode: 401}}
	stream := &recordingStream{}
	svc := NewOrderService(c, stream)

	_, err := svc.Submit(context.Background(), orderDoc())
	require.Error(t, err)
	assert.Equal(t, 401, client.StatusCode(err))
	assert.Empty(t, stream.published)
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	svc := NewOrderService(&fakeClient{}, &recordingStream{err: errors.New("redis down")})

	order, err := svc.Submit(context.Background(), orderDoc())
	require.NoError(t, err)
	assert.Equal(t, int64(900), order.ID)
}

func TestOrderService_ProcessOrderPlacedAcks(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	stream := queue.NewRedisEventStream(rdb, config.RedisConfig{ConsumerGroup: "storefront_consumer"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, stream.EnsureStream(ctx, event.OrderPlacedType))

	svc := NewOrderService(&fakeClient{}, stream)
	_, err := svc.Submit(ctx, orderDoc())
	require.NoError(t, err)

	msg, err := stream.Read(ctx, event.OrderPlacedType, "test", 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NoError(t, svc.processOrderPlaced(ctx, msg))

	pending, err := rdb.XPending(ctx, queue.StreamName(event.OrderPlacedType), "storefront_consumer").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

type unreachableStream struct {
	recordingStream
	reads atomic.Int32
}

func (s *unreachableStream) Read(context.Context, string, string, time.Duration) (*redis.XMessage, error) {
	s.reads.Add(1)
	return nil, errors.New("connection refused")
}

func TestOrderService_RunOrderLogBacksOffOnReadErrors(t *testing.T) {
	stream := &unreachableStream{}
	svc := NewOrderService(&fakeClient{}, stream)
	svc.readBackoff = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, svc.RunOrderLog(ctx, 1))

	assert.Less(t, time.Since(start), time.Second, "worker stops once ctx is done")
	assert.LessOrEqual(t, stream.reads.Load(), int32(4))
	assert.GreaterOrEqual(t, stream.reads.Load(), int32(1))
}
