// Package retriever puts a query/top-k contract in front of the vector store
// and turns search hits into place ids.
package retriever

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
)

// scanFactor bounds how many hits SearchPlaceIDs reads per requested id.
const scanFactor = 3

// Searcher is the part of the vector store the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
}

type Retriever struct {
	store  Searcher
	logger logger.Logger
}

func New(store Searcher, log logger.Logger) *Retriever {
	return &Retriever{
		store:  store,
		logger: log.With(map[string]interface{}{"component": "retriever"}),
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	results, err := r.store.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("documents retrieved", map[string]interface{}{
		"query":   query,
		"k":       maxResults,
		"results": len(results),
	})
	return results, nil
}

// SearchPlaceIDs collects up to maxResults distinct place ids in ranking
// order. Hits without a usable place id are skipped, and at most
// maxResults*3 hits are read.
func (r *Retriever) SearchPlaceIDs(ctx context.Context, query string, maxResults int) ([]int64, error) {
	if maxResults <= 0 {
		return []int64{}, nil
	}
	results, err := r.store.Search(ctx, query, maxResults*scanFactor)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, maxResults)
	seen := make(map[int64]struct{}, maxResults)
	skipped := 0
	for _, res := range results {
		id, ok := PlaceID(res.Metadata)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == maxResults {
			break
		}
	}

	r.logger.Debug("place ids resolved", map[string]interface{}{
		"requested": maxResults,
		"found":     len(ids),
		"scanned":   len(results),
		"skipped":   skipped,
	})
	return ids, nil
}

// PlaceID reads the place id from chunk metadata. Integer, float and
// numeric string encodings are accepted since backends round-trip JSON.
func PlaceID(meta map[string]interface{}) (int64, bool) {
	raw, ok := meta[models.MetaPlaceID]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
