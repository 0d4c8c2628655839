// internal/domain/poi/source.go

package poi

import (
	"context"
)

// ListParams defines the query for one page of POIs
type ListParams struct {
	Page      int
	Limit     int
	Category  string
	Search    string
	Sentiment string
}

// GeoParams defines the query for the geo aggregate
type GeoParams struct {
	Category  string
	Sentiment string
}

// Source defines the read operations of the remote analytics API.
//
// Only ListPOIs reports failures. The aggregate operations absorb their own
// errors and return an empty default so that one failing widget never takes
// the whole dashboard down.
type Source interface {
	// ListPOIs returns one page of POIs. On failure it returns EmptyPage and the error.
	ListPOIs(ctx context.Context, params ListParams) (PaginatedResponse, error)

	// SentimentAnalytics returns the sentiment distribution, or an empty slice
	SentimentAnalytics(ctx context.Context) []SentimentCount

	// CategoryAnalytics returns the category aggregate, or an empty slice
	CategoryAnalytics(ctx context.Context) []CategoryCount

	// EmotionAnalytics returns the emotion averages, or nil
	EmotionAnalytics(ctx context.Context) *EmotionAverages

	// GeoData returns map points for the given filter, or an empty slice
	GeoData(ctx context.Context, params GeoParams) []GeoPoint
}
