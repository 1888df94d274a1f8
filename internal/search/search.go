package search

import (
	"context"
	"strings"

	"github.com/Skotchmaster/product_dashboard/internal/models"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
	// Sync replaces the indexed documents with products.
	Sync(ctx context.Context, products []models.Product) error
}

type Lister interface {
	All() []models.Product
}

// LocalSearcher matches the query against the live catalog without an index.
type LocalSearcher struct {
	Catalog Lister
}

func NewLocalSearcher(catalog Lister) *LocalSearcher {
	return &LocalSearcher{Catalog: catalog}
}

func (s *LocalSearcher) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	matched := make([]models.Product, 0)
	for _, p := range s.Catalog.All() {
		if q == "" || matches(p, q) {
			matched = append(matched, p)
		}
	}

	total := int64(len(matched))
	if from < 0 {
		from = 0
	}
	if from >= len(matched) {
		return total, []models.Product{}, nil
	}
	end := len(matched)
	if size > 0 && from+size < end {
		end = from + size
	}
	return total, matched[from:end], nil
}

func (s *LocalSearcher) Sync(context.Context, []models.Product) error { return nil }

func matches(p models.Product, q string) bool {
	for _, field := range []string{p.Name, p.Brand, p.Type} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
