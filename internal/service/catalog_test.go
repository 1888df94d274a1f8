package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_dashboard/internal/catalog"
	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/internal/repo"
	"github.com/Skotchmaster/product_dashboard/internal/transport"
	"github.com/Skotchmaster/product_dashboard/pkg/events"
)

type recordingSearcher struct {
	mu       sync.Mutex
	synced   [][]models.Product
	syncErr  error
	inFlight int
	overlap  bool
}

func (r *recordingSearcher) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	return 0, nil, nil
}

func (r *recordingSearcher) Sync(_ context.Context, products []models.Product) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > 1 {
		r.overlap = true
	}
	r.mu.Unlock()

	time.Sleep(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight--
	r.synced = append(r.synced, products)
	return r.syncErr
}

type failingPublisher struct{}

func (failingPublisher) PublishEvent(context.Context, string, string, any) error {
	return errors.New("broker down")
}
func (failingPublisher) Close() error { return nil }

func newTestCatalogService(t *testing.T) (*CatalogService, *events.Recorder, *recordingSearcher) {
	t.Helper()
	store, err := catalog.Open(context.Background(), repo.NewMemoryRepo())
	require.NoError(t, err)
	rec := &events.Recorder{}
	srch := &recordingSearcher{}
	return &CatalogService{Store: store, Events: rec, Search: srch}, rec, srch
}

func lastProductEvent(t *testing.T, rec *events.Recorder) events.ProductEvent {
	t.Helper()
	msg, ok := rec.Last()
	require.True(t, ok, "no event published")
	assert.Equal(t, events.TopicProducts, msg.Topic)
	return msg.Event.(events.ProductEvent)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	svc, rec, srch := newTestCatalogService(t)
	ctx := context.Background()

	prod, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "X", Stock: "5"}, models.TabUnpublished)
	require.NoError(t, err)
	assert.False(t, prod.IsPublished)
	assert.Equal(t, 5, prod.Stock)

	ev := lastProductEvent(t, rec)
	assert.Equal(t, events.ProductCreated, ev.Type)
	assert.Equal(t, prod.ID, ev.ProductID)
	assert.Equal(t, "X", ev.Name)
	assert.NotEmpty(t, ev.EventID)

	require.Len(t, srch.synced, 1)
	assert.Len(t, srch.synced[0], 4)
}

func TestCatalogService_PatchProduct(t *testing.T) {
	svc, rec, _ := newTestCatalogService(t)
	ctx := context.Background()
	name := "Renamed"

	prod, found, err := svc.PatchProduct(ctx, transport.PatchProductRequest{Name: &name}, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Renamed", prod.Name)
	assert.Equal(t, events.ProductUpdated, lastProductEvent(t, rec).Type)

	_, found, err = svc.PatchProduct(ctx, transport.PatchProductRequest{Name: &name}, 404)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, rec.Messages(), 1, "no event for an unknown id")
}

func TestCatalogService_TogglePublish(t *testing.T) {
	svc, rec, _ := newTestCatalogService(t)

	prod, found, err := svc.TogglePublish(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, prod.IsPublished)

	ev := lastProductEvent(t, rec)
	assert.Equal(t, events.ProductPublishToggled, ev.Type)
	assert.False(t, ev.IsPublished)
	assert.Len(t, svc.List(models.TabUnpublished), 1)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	svc, rec, srch := newTestCatalogService(t)
	ctx := context.Background()

	found, err := svc.DeleteProduct(ctx, 2)
	require.NoError(t, err)
	assert.True(t, found)

	ev := lastProductEvent(t, rec)
	assert.Equal(t, events.ProductDeleted, ev.Type)
	assert.EqualValues(t, 2, ev.ProductID)
	assert.Equal(t, "CakeZone Choco Fudge Brownie", ev.Name)
	require.Len(t, srch.synced, 1)
	assert.Len(t, srch.synced[0], 2)

	found, err = svc.DeleteProduct(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, rec.Messages(), 1)
}

func TestCatalogService_ConcurrentDeleteReportsOnce(t *testing.T) {
	svc, rec, _ := newTestCatalogService(t)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.DeleteProduct(ctx, 2)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				found++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, found)
	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "CakeZone Choco Fudge Brownie", msgs[0].Event.(events.ProductEvent).Name)
}

func TestCatalogService_SideEffectFailuresAreNotReturned(t *testing.T) {
	svc, _, _ := newTestCatalogService(t)
	svc.Events = failingPublisher{}
	svc.Search = &recordingSearcher{syncErr: errors.New("es down")}

	prod, err := svc.CreateProduct(context.Background(), transport.CreateProductRequest{Name: "Y"}, models.TabPublished)
	require.NoError(t, err)
	got, ok := svc.Get(prod.ID)
	require.True(t, ok)
	assert.Equal(t, prod, got)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	svc, _, _ := newTestCatalogService(t)
	svc.Search = nil

	total, got, err := svc.SearchProducts(context.Background(), "brownie", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, got, 2)

	_, _, err = svc.SearchProducts(context.Background(), "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_ConcurrentMutationsSyncInOrder(t *testing.T) {
	svc, _, srch := newTestCatalogService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: fmt.Sprintf("P%d", i)}, models.TabPublished)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	srch.mu.Lock()
	defer srch.mu.Unlock()
	assert.False(t, srch.overlap, "index syncs overlapped")
	require.Len(t, srch.synced, 8)
	assert.Equal(t, svc.Store.All(), srch.synced[len(srch.synced)-1])
}
