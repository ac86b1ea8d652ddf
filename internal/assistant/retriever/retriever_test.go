package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchResult), args.Error(1)
}

func hit(placeID interface{}) models.SearchResult {
	meta := map[string]interface{}{}
	if placeID != nil {
		meta[models.MetaPlaceID] = placeID
	}
	return models.SearchResult{DocumentID: "d", Metadata: meta}
}

func TestRetrieve_PassesK(t *testing.T) {
	store := new(MockSearcher)
	want := []models.SearchResult{hit(int64(1)), hit(int64(2))}
	store.On("Search", mock.Anything, "서울 맛집", 3).Return(want, nil)

	r := New(store, logger.NewTestLogger(t))
	got, err := r.Retrieve(context.Background(), "서울 맛집", 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestSearchPlaceIDs(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		results []models.SearchResult
		want    []int64
	}{
		{
			name:    "keeps reading past hits without ids",
			max:     2,
			results: []models.SearchResult{hit(nil), hit("abc"), hit(int64(4)), hit(nil), hit(float64(9))},
			want:    []int64{4, 9},
		},
		{
			name:    "stops at max ids",
			max:     2,
			results: []models.SearchResult{hit(1), hit(2), hit(3)},
			want:    []int64{1, 2},
		},
		{
			name:    "skips duplicate places",
			max:     3,
			results: []models.SearchResult{hit(int64(5)), hit("5"), hit(json.Number("6"))},
			want:    []int64{5, 6},
		},
		{
			name:    "no ids at all",
			max:     4,
			results: []models.SearchResult{hit(nil), hit(1.5)},
			want:    []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockSearcher)
			store.On("Search", mock.Anything, "q", tt.max*3).Return(tt.results, nil)

			r := New(store, logger.NewNoOpLogger())
			got, err := r.SearchPlaceIDs(context.Background(), "q", tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			store.AssertExpectations(t)
		})
	}
}

func TestSearchPlaceIDs_PropagatesStoreError(t *testing.T) {
	store := new(MockSearcher)
	store.On("Search", mock.Anything, "q", 15).Return(nil, errors.New("index unavailable"))

	r := New(store, logger.NewNoOpLogger())
	_, err := r.SearchPlaceIDs(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestPlaceID(t *testing.T) {
	id, ok := PlaceID(map[string]interface{}{models.MetaPlaceID: " 42 "})
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = PlaceID(map[string]interface{}{models.MetaPlaceID: true})
	assert.False(t, ok)

	_, ok = PlaceID(nil)
	assert.False(t, ok)
}
