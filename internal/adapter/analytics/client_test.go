package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poidash/internal/domain/poi"
)

func TestListPOIs_BuildsQuery(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pois", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"_id":       "p1",
					"name":      "Cafe",
					"category":  "Food",
					"location":  map[string]interface{}{"type": "Point", "coordinates": []float64{10, 20}},
					"sentiment": map[string]interface{}{"label": "Positive", "score": 0.9},
				},
			},
			"pagination": map[string]interface{}{
				"total": 120, "page": 2, "limit": 50, "totalPages": 3, "hasMore": true,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.ListPOIs(context.Background(), poi.ListParams{Page: 2, Category: "Food", Search: "cafe"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.Equal(t, []string{"Food"}, gotQuery["category"])
	assert.Equal(t, []string{"cafe"}, gotQuery["search"])

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "p1", resp.Data[0].ID)
	assert.Equal(t, 20.0, resp.Data[0].Location.Latitude())
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestListPOIs_OmitsAllCategoryAndEmptySearch(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":[],"pagination":{"total":0,"page":1,"limit":50,"totalPages":0,"hasMore":false}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ListPOIs(context.Background(), poi.ListParams{Page: 1, Category: "all"})
	require.NoError(t, err)

	assert.NotContains(t, gotQuery, "category")
	assert.NotContains(t, gotQuery, "search")
}

func TestListPOIs_ErrorReturnsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.ListPOIs(context.Background(), poi.ListParams{Page: 4, Limit: 25})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	assert.Empty(t, resp.Data)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, poi.Pagination{Page: 1, Limit: 25}, resp.Pagination)
}

func TestAggregates_DegradeToDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	sentiment := client.SentimentAnalytics(ctx)
	assert.NotNil(t, sentiment)
	assert.Empty(t, sentiment)

	categories := client.CategoryAnalytics(ctx)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	assert.Nil(t, client.EmotionAnalytics(ctx))

	geo := client.GeoData(ctx, poi.GeoParams{Category: "Food"})
	assert.NotNil(t, geo)
	assert.Empty(t, geo)
}

func TestAggregates_Decode(t *testing.T) {
	var geoQuery map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/analytics/sentiment", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"Positive","count":5},{"label":"Negative","count":2}]`))
	})
	mux.HandleFunc("/analytics/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"Food","count":5},{"label":"Park","count":2}]`))
	})
	mux.HandleFunc("/analytics/emotions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"avgJoy":null,"avgSadness":3.456}`))
	})
	mux.HandleFunc("/analytics/geo", func(w http.ResponseWriter, r *http.Request) {
		geoQuery = r.URL.Query()
		w.Write([]byte(`[{"location":{"coordinates":[1.5,2.5]},"name":"A","category":"Food","sentiment":{"label":"Neutral"}}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	assert.Equal(t, []poi.SentimentCount{{Label: "Positive", Count: 5}, {Label: "Negative", Count: 2}}, client.SentimentAnalytics(ctx))

	categories := client.CategoryAnalytics(ctx)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name())
	assert.Equal(t, "Park", categories[1].Name())

	emotions := client.EmotionAnalytics(ctx)
	require.NotNil(t, emotions)
	assert.Nil(t, emotions.AvgJoy)
	require.NotNil(t, emotions.AvgSadness)
	assert.Equal(t, 3.456, *emotions.AvgSadness)
	assert.Nil(t, emotions.AvgCalm)

	geo := client.GeoData(ctx, poi.GeoParams{Category: "all"})
	require.Len(t, geo, 1)
	assert.Equal(t, "Neutral", geo[0].Sentiment.Label)
	assert.Equal(t, 1.5, geo[0].Location.Longitude())
	assert.NotContains(t, geoQuery, "category")
}

func TestClient_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListPOIs(ctx, poi.ListParams{Page: 1})
	assert.Error(t, err)
}
