// internal/domain/dashboard/view.go

package dashboard

import (
	"math"
	"slices"

	"poidash/internal/domain/poi"
)

// ErrorLoading is the dashboard-wide error shown when a refresh fails
const ErrorLoading = "Error loading data. Please try again."

// PageInfo is the pagination metadata shown with the POI list
type PageInfo struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// HasPrev reports whether a previous page exists
func (p PageInfo) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a next page exists
func (p PageInfo) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Emotions holds the eight emotion averages, normalized for display
type Emotions struct {
	AvgJoy     float64 `json:"avgJoy"`
	AvgSadness float64 `json:"avgSadness"`
	AvgFear    float64 `json:"avgFear"`
	AvgDisgust float64 `json:"avgDisgust"`
	AvgAnger   float64 `json:"avgAnger"`
	AvgHappy   float64 `json:"avgHappy"`
	AvgCalm    float64 `json:"avgCalm"`
	AvgNone    float64 `json:"avgNone"`
}

// NormalizeEmotions converts the raw aggregate into display values: missing,
// null and non-finite values become 0 and everything is rounded to two decimals.
func NormalizeEmotions(raw *poi.EmotionAverages) Emotions {
	if raw == nil {
		return Emotions{}
	}
	return Emotions{
		AvgJoy:     round2(raw.AvgJoy),
		AvgSadness: round2(raw.AvgSadness),
		AvgFear:    round2(raw.AvgFear),
		AvgDisgust: round2(raw.AvgDisgust),
		AvgAnger:   round2(raw.AvgAnger),
		AvgHappy:   round2(raw.AvgHappy),
		AvgCalm:    round2(raw.AvgCalm),
		AvgNone:    round2(raw.AvgNone),
	}
}

func round2(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return math.Round(*v*100) / 100
}

// CategoryNames projects the category aggregate onto its labels
func CategoryNames(counts []poi.CategoryCount) []string {
	names := make([]string, 0, len(counts))
	for _, c := range counts {
		if name := c.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Aggregates are the server-computed statistics shown by the widgets
type Aggregates struct {
	Sentiment  []poi.SentimentCount `json:"sentiment"`
	Emotions   Emotions             `json:"emotions"`
	Categories []string             `json:"categories"`
	Geo        []poi.GeoPoint       `json:"geo"`
}

// ViewState is the read-only snapshot consumed by presentation. It is
// replaced as a whole on every commit.
type ViewState struct {
	POIs       []poi.POI  `json:"pois"`
	Pagination PageInfo   `json:"pagination"`
	Aggregates Aggregates `json:"aggregates"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	Generation uint64     `json:"generation"`
}

// EmptyView returns the view state before the first fetch completes
func EmptyView() ViewState {
	return ViewState{
		POIs:       []poi.POI{},
		Pagination: PageInfo{CurrentPage: 1, TotalPages: 1},
		Aggregates: Aggregates{
			Sentiment:  []poi.SentimentCount{},
			Categories: []string{},
			Geo:        []poi.GeoPoint{},
		},
		Loading: true,
	}
}

// Clone returns a copy that shares no slices with v
func (v ViewState) Clone() ViewState {
	out := v
	out.POIs = slices.Clone(v.POIs)
	out.Aggregates.Sentiment = slices.Clone(v.Aggregates.Sentiment)
	out.Aggregates.Categories = slices.Clone(v.Aggregates.Categories)
	out.Aggregates.Geo = slices.Clone(v.Aggregates.Geo)
	return out
}
