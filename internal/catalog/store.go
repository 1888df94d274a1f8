// Package catalog owns the in-memory product collection and keeps its
// storage slot in sync with it.
//
// Every mutating operation encodes the whole collection and writes it to the
// slot before returning. The new collection only becomes visible once the
// write succeeded, so a failed write leaves the store unchanged.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/internal/repo"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
)

const DefaultKey = "products"

// Source tells where the collection came from when the store was opened.
type Source string

const (
	SourceStored      Source = "stored"
	SourceSeedAbsent  Source = "seed_absent"
	SourceSeedCorrupt Source = "seed_corrupt"
)

type Store struct {
	mu       sync.Mutex
	slots    repo.Slots
	key      string
	now      func() time.Time
	log      *slog.Logger
	source   Source
	lastID   int64
	products []models.Product
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the collection from the slot. A missing slot, a JSON null or a
// value that is not an array of objects falls back to Seed. Numeric fields
// inside the records are read leniently. Only a
// failing storage backend is reported as an error.
func Open(ctx context.Context, slots repo.Slots, opts ...Option) (*Store, error) {
	s := &Store{
		slots: slots,
		key:   DefaultKey,
		now:   time.Now,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	l := s.log.With("component", "catalog", "slot", s.key)

	raw, found, err := slots.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.key, err)
	}

	switch products, decErr := decode(raw); {
	case !found:
		s.products, s.source = Seed(), SourceSeedAbsent
		l.Info("catalog_seeded", "reason", "slot is empty")
	case decErr != nil:
		s.products, s.source = Seed(), SourceSeedCorrupt
		l.Warn("catalog_seeded", "reason", "stored value is not a product list", "error", decErr)
	default:
		s.products, s.source = products, SourceStored
		l.Info("catalog_loaded", "count", len(products))
	}

	for _, p := range s.products {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	return s, nil
}

func decode(raw string) ([]models.Product, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("no product array in slot")
	}
	var products []models.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *Store) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// All returns a copy of the whole collection in insertion order.
func (s *Store) All() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.products)
}

// List returns the records of one tab in insertion order.
func (s *Store) List(tab models.Tab) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if tab.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Get(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.products[i], true
	}
	return models.Product{}, false
}

// Create appends a new record. It is published when created from the
// Published tab.
func (s *Store) Create(ctx context.Context, d models.Draft, activeTab models.Tab) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prod := models.Product{
		ID:             s.nextID(),
		Name:           d.Name,
		Type:           d.Type,
		Stock:          d.Stock,
		MRP:            d.MRP,
		SellingPrice:   d.SellingPrice,
		Brand:          d.Brand,
		ReturnEligible: d.ReturnEligible,
		IsPublished:    activeTab.Published(),
	}

	next := append(clone(s.products), prod)
	if err := s.commit(ctx, next); err != nil {
		return models.Product{}, err
	}
	s.lastID = prod.ID
	return prod, nil
}

// Update merges the patch into the record with the given id. An unknown id
// is a no-op and reports found=false.
func (s *Store) Update(ctx context.Context, id int64, patch models.Patch) (models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, patch.ApplyTo)
}

// TogglePublish flips the published flag of one record.
func (s *Store) TogglePublish(ctx context.Context, id int64) (models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, id, func(p *models.Product) { p.IsPublished = !p.IsPublished })
}

// Delete removes the record with the given id, if any, and returns it.
func (s *Store) Delete(ctx context.Context, id int64) (models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	next := clone(s.products)
	var removed models.Product
	if i >= 0 {
		removed = next[i]
		next = append(next[:i], next[i+1:]...)
	}
	if err := s.commit(ctx, next); err != nil {
		return models.Product{}, false, err
	}
	return removed, i >= 0, nil
}

func (s *Store) mutate(ctx context.Context, id int64, fn func(*models.Product)) (models.Product, bool, error) {
	next := clone(s.products)
	i := s.indexOf(id)
	if i >= 0 {
		fn(&next[i])
	}
	if err := s.commit(ctx, next); err != nil {
		return models.Product{}, false, err
	}
	if i < 0 {
		return models.Product{}, false, nil
	}
	return next[i], true, nil
}

// commit writes next to the slot and, on success, makes it the current
// collection. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []models.Product) error {
	if next == nil {
		next = []models.Product{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.slots.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write slot %q: %w", s.key, err)
	}
	s.products = next
	return nil
}

// nextID uses the wall clock in milliseconds and steps past any id already
// handed out, so two creations within one millisecond still differ.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *Store) indexOf(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
