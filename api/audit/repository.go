// api/audit/repository.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

type Repository interface {
	// Append writes a new entry. Entries are never updated in place; the one
	// exception is AttachFlag, which only adds the oversight verdict.
	Append(ctx context.Context, entry Entry) error
	AttachFlag(ctx context.Context, correlationID string, flag *model.Flag) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

// NewElasticsearchRepository creates a new repository against the given
// Elasticsearch URL, writing to the given index.
func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

// Append indexes an audit entry, keyed by correlation id so a later flag can
// find its entry.
func (r *ElasticsearchRepository) Append(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: entry.CorrelationID,
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

// AttachFlag adds the oversight verdict to an already-appended entry.
func (r *ElasticsearchRepository) AttachFlag(ctx context.Context, correlationID string, flag *model.Flag) error {
	doc := map[string]interface{}{
		"doc": map[string]interface{}{
			"flag": flag,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.UpdateRequest{
		Index:      r.index,
		DocumentID: correlationID,
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error updating document %s: %s", correlationID, res.String())
	}

	return nil
}

// Query searches audit entries, newest first.
func (r *ElasticsearchRepository) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	must := []interface{}{}

	if !filter.From.IsZero() || !filter.To.IsZero() {
		rng := map[string]interface{}{}
		if !filter.From.IsZero() {
			rng["gte"] = filter.From.Format(time.RFC3339)
		}
		if !filter.To.IsZero() {
			rng["lte"] = filter.To.Format(time.RFC3339)
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": rng,
			},
		})
	}

	if filter.User != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"context.caller_id": filter.User,
			},
		})
	}

	if filter.Feature != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"context.feature": filter.Feature,
			},
		})
	}

	size := filter.Limit
	if size <= 0 {
		size = 100
	}

	query := map[string]interface{}{
		"size": size,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": must,
			},
		},
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching documents: %s", res.String())
	}

	var rmap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&rmap); err != nil {
		return nil, err
	}

	hits := rmap["hits"].(map[string]interface{})["hits"].([]interface{})
	entries := make([]Entry, len(hits))
	for i, hit := range hits {
		source := hit.(map[string]interface{})["_source"]
		data, _ := json.Marshal(source)
		json.Unmarshal(data, &entries[i])
	}

	return entries, nil
}
