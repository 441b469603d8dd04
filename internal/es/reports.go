package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/water_backoffice/internal/models"
)

type ReportIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewReportIndex(client *elasticsearch.Client, index string) *ReportIndex {
	return &ReportIndex{client: client, index: index}
}

type reportDoc struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Report      string    `json:"report"`
	Direction   string    `json:"direction"`
	Observation string    `json:"observation"`
	StateID     string    `json:"state_id"`
	Date        time.Time `json:"date"`
}

func (x *ReportIndex) Index(ctx context.Context, r *models.Report) error {
	doc := reportDoc{
		ID:          r.ID,
		Key:         r.Key,
		Name:        r.Name,
		Report:      r.Report,
		Direction:   r.Direction,
		Observation: r.Observation,
		StateID:     r.StateID,
		Date:        r.Date,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode report doc: %w", err)
	}

	res, err := x.client.Index(x.index, &buf,
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(r.ID),
	)
	if err != nil {
		return fmt.Errorf("index report %s: %w", r.ID, err)
	}
	return checkResponse(res, "index report")
}

func (x *ReportIndex) Delete(ctx context.Context, id string) error {
	res, err := x.client.Delete(x.index, id, x.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete report")
}

// Search returns the ids of matching reports in relevance order.
func (x *ReportIndex) Search(ctx context.Context, query string, from, size int) (int64, []string, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "key^2", "report", "direction", "observation"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search reports: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search reports: %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		ids[i] = h.ID
	}
	return r.Hits.Total.Value, ids, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), raw)
	}
	return nil
}
