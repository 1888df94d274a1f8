package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
)

const DefaultIndex = "products"

type ElasticConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type ElasticSearcher struct {
	ES    *elasticsearch.Client
	Index string
}

// NewElasticSearcher connects and checks that the cluster answers.
func NewElasticSearcher(ctx context.Context, cfg ElasticConfig) (*ElasticSearcher, error) {
	l := logging.FromContext(ctx).With("component", "search.elastic")
	l.Info("es_connecting", "url", cfg.URL, "user", cfg.User)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("es_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("es info: %s", res.Status())
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	l.Info("es_connected", "index", index)
	return &ElasticSearcher{ES: client, Index: index}, nil
}

func (s *ElasticSearcher) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "brand", "type"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	// nothing was indexed yet
	if res.StatusCode == http.StatusNotFound {
		return 0, []models.Product{}, nil
	}
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

// Sync indexes every product under its id and then drops documents whose
// id is no longer in the catalog.
func (s *ElasticSearcher) Sync(ctx context.Context, products []models.Product) error {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = strconv.FormatInt(p.ID, 10)
	}

	if len(products) > 0 {
		if err := s.bulkIndex(ctx, products, ids); err != nil {
			return err
		}
	}
	return s.deleteStale(ctx, ids)
}

func (s *ElasticSearcher) bulkIndex(ctx context.Context, products []models.Product, ids []string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": s.Index, "_id": ids[i]}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("sync: encode meta: %w", err)
		}
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("sync: encode product %d: %w", p.ID, err)
		}
	}

	res, err := s.ES.Bulk(&buf,
		s.ES.Bulk.WithContext(ctx),
		s.ES.Bulk.WithIndex(s.Index),
		s.ES.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("sync: bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("sync: bulk: %s", res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("sync: decode bulk response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("sync: bulk reported item errors")
	}
	return nil
}

func (s *ElasticSearcher) deleteStale(ctx context.Context, keep []string) error {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must_not": map[string]any{
					"ids": map[string]any{"values": keep},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("sync: encode delete query: %w", err)
	}

	res, err := s.ES.DeleteByQuery([]string{s.Index}, &buf,
		s.ES.DeleteByQuery.WithContext(ctx),
		s.ES.DeleteByQuery.WithConflicts("proceed"),
		s.ES.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("sync: delete stale: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("sync: delete stale: %s", res.Status())
	}
	return nil
}
