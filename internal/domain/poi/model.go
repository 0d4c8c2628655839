// internal/domain/poi/model.go

package poi

// Location is a GeoJSON point. Coordinates are longitude first.
type Location struct {
	Type        string     `json:"type,omitempty"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Longitude returns the first coordinate
func (l Location) Longitude() float64 { return l.Coordinates[0] }

// Latitude returns the second coordinate
func (l Location) Latitude() float64 { return l.Coordinates[1] }

// Sentiment is the server-assigned sentiment of a POI
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Sentiment labels emitted by the analytics service
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// POI represents a point of interest with sentiment and emotion metadata
type POI struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	Category  string             `json:"category"`
	Location  Location           `json:"location"`
	Sentiment Sentiment          `json:"sentiment"`
	Emotions  map[string]float64 `json:"emotions,omitempty"`
	Timestamp string             `json:"timestamp,omitempty"`
}

// Pagination is the server's pagination metadata for a POI page
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// PaginatedResponse is one page of POIs
type PaginatedResponse struct {
	Data       []POI      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// EmptyPage returns the zero default used when the list request fails
func EmptyPage(limit int) PaginatedResponse {
	return PaginatedResponse{
		Data: []POI{},
		Pagination: Pagination{
			Page:  1,
			Limit: limit,
		},
	}
}

// SentimentCount is one bucket of the sentiment distribution
type SentimentCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCount is one bucket of the category aggregate. Older deployments
// only send the grouping key as _id.
type CategoryCount struct {
	ID    string `json:"_id,omitempty"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// Name returns the category label, falling back to the grouping key
func (c CategoryCount) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// EmotionAverages is the raw emotion aggregate. Any field may be absent or null.
type EmotionAverages struct {
	AvgJoy     *float64 `json:"avgJoy"`
	AvgSadness *float64 `json:"avgSadness"`
	AvgFear    *float64 `json:"avgFear"`
	AvgDisgust *float64 `json:"avgDisgust"`
	AvgAnger   *float64 `json:"avgAnger"`
	AvgHappy   *float64 `json:"avgHappy"`
	AvgCalm    *float64 `json:"avgCalm"`
	AvgNone    *float64 `json:"avgNone"`
}

// GeoSentiment is the sentiment projection carried by a geo point
type GeoSentiment struct {
	Label string `json:"label"`
}

// GeoPoint is a lightweight POI projection for map plotting
type GeoPoint struct {
	Name      string       `json:"name"`
	Category  string       `json:"category"`
	Location  Location     `json:"location"`
	Sentiment GeoSentiment `json:"sentiment"`
}
