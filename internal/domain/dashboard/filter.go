// internal/domain/dashboard/filter.go

package dashboard

import (
	"net/url"
	"strconv"
)

// AllCategories is the category sentinel meaning "no category filter"
const AllCategories = "all"

// Dashboard views, in tab order
const (
	ViewAnalytics = 0
	ViewMap       = 1
	ViewList      = 2
)

// Persisted query keys
const (
	KeyPage     = "page"
	KeyCategory = "category"
	KeySearch   = "search"
	KeyView     = "view"
)

// FilterState is the user-driven filter of the dashboard
type FilterState struct {
	Page     int    `json:"page"`
	Category string `json:"category"`
	Search   string `json:"search"`
	View     int    `json:"view"`
}

// DefaultFilter returns the filter state of an empty query
func DefaultFilter() FilterState {
	return FilterState{
		Page:     1,
		Category: AllCategories,
		View:     ViewAnalytics,
	}
}

// FetchKey is the part of the filter that determines what data is loaded.
// View changes are a display concern and are not part of it.
type FetchKey struct {
	Page     int
	Category string
	Search   string
}

// FetchKey returns the fetch-relevant projection of the filter
func (f FilterState) FetchKey() FetchKey {
	return FetchKey{Page: f.Page, Category: f.Category, Search: f.Search}
}

// ValidView reports whether idx names one of the dashboard views
func ValidView(idx int) bool {
	return idx >= ViewAnalytics && idx <= ViewList
}

// Values serializes the filter into its persisted form, omitting defaults
func (f FilterState) Values() url.Values {
	values := url.Values{}
	if f.Page > 1 {
		values.Set(KeyPage, strconv.Itoa(f.Page))
	}
	if f.Category != "" && f.Category != AllCategories {
		values.Set(KeyCategory, f.Category)
	}
	if f.Search != "" {
		values.Set(KeySearch, f.Search)
	}
	if f.View != ViewAnalytics && ValidView(f.View) {
		values.Set(KeyView, strconv.Itoa(f.View))
	}
	return values
}

// Encode returns the persisted query string (without a leading '?')
func (f FilterState) Encode() string {
	return f.Values().Encode()
}

// FromValues builds a filter from a persisted query. Malformed or
// out-of-range values fall back to their defaults.
func FromValues(values url.Values) FilterState {
	f := DefaultFilter()

	if page, err := strconv.Atoi(values.Get(KeyPage)); err == nil && page >= 1 {
		f.Page = page
	}
	if category := values.Get(KeyCategory); category != "" {
		f.Category = category
	}
	f.Search = values.Get(KeySearch)
	if view, err := strconv.Atoi(values.Get(KeyView)); err == nil && ValidView(view) {
		f.View = view
	}

	return f
}

// ParseQuery parses a persisted query string. A leading '?' is accepted.
// On a malformed query the well-formed pairs are still applied and the
// first parse error is returned alongside them.
func ParseQuery(query string) (FilterState, error) {
	if len(query) > 0 && query[0] == '?' {
		query = query[1:]
	}
	values, err := url.ParseQuery(query)
	return FromValues(values), err
}
