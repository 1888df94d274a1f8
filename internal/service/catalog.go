package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Skotchmaster/product_dashboard/internal/catalog"
	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/internal/search"
	"github.com/Skotchmaster/product_dashboard/internal/transport"
	"github.com/Skotchmaster/product_dashboard/pkg/events"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
)

// CatalogService runs each mutation against the store first. Event
// publishing and index sync happen after the write and only log failures.
type CatalogService struct {
	Store  *catalog.Store
	Events events.Publisher
	Search search.Searcher

	syncMu sync.Mutex
}

func (s *CatalogService) List(tab models.Tab) []models.Product {
	return s.Store.List(tab)
}

func (s *CatalogService) Get(id int64) (models.Product, bool) {
	return s.Store.Get(id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest, activeTab models.Tab) (models.Product, error) {
	prod, err := s.Store.Create(ctx, req.Draft(), activeTab)
	if err != nil {
		return models.Product{}, err
	}
	s.after(ctx, events.ProductCreated, prod)
	return prod, nil
}

// PatchProduct reports found=false for an unknown id; nothing changes then.
func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id int64) (models.Product, bool, error) {
	prod, found, err := s.Store.Update(ctx, id, req.Patch())
	if err != nil || !found {
		return prod, found, err
	}
	s.after(ctx, events.ProductUpdated, prod)
	return prod, true, nil
}

func (s *CatalogService) TogglePublish(ctx context.Context, id int64) (models.Product, bool, error) {
	prod, found, err := s.Store.TogglePublish(ctx, id)
	if err != nil || !found {
		return prod, found, err
	}
	s.after(ctx, events.ProductPublishToggled, prod)
	return prod, true, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	prod, found, err := s.Store.Delete(ctx, id)
	if err != nil || !found {
		return found, err
	}
	s.after(ctx, events.ProductDeleted, prod)
	return true, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	return s.searcher().Search(ctx, query, from, size)
}

// Reindex pushes the whole catalog to the search index. Syncs run one at a
// time and snapshot the store after taking the lock, so the last sync to
// finish always carries the latest collection.
func (s *CatalogService) Reindex(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.searcher().Sync(ctx, s.Store.All())
}

func (s *CatalogService) after(ctx context.Context, typ string, prod models.Product) {
	l := logging.FromContext(ctx)

	if s.Events != nil {
		ev := events.NewProductEvent(typ, prod.ID, prod.Name, prod.IsPublished)
		if err := s.Events.PublishEvent(ctx, events.TopicProducts, strconv.FormatInt(prod.ID, 10), ev); err != nil {
			l.Warn("publish_event_error", "topic", events.TopicProducts, "type", typ, "error", err)
		}
	}
	if err := s.Reindex(ctx); err != nil {
		l.Warn("search_sync_error", "type", typ, "error", err)
	}
}

func (s *CatalogService) searcher() search.Searcher {
	if s.Search == nil {
		return search.NewLocalSearcher(s.Store)
	}
	return s.Search
}
