package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poidash/internal/domain/poi"
)

func TestEncodeOmitsDefaults(t *testing.T) {
	assert.Equal(t, "", DefaultFilter().Encode())

	f := FilterState{Page: 3, Category: "Food", Search: "pizza place", View: ViewList}
	assert.Equal(t, "category=Food&page=3&search=pizza+place&view=2", f.Encode())
}

func TestEncodeDropsAllCategory(t *testing.T) {
	f := FilterState{Page: 2, Category: AllCategories, View: ViewMap}
	values := f.Values()

	_, ok := values[KeyCategory]
	assert.False(t, ok, "category=all must not be serialized")
	assert.Equal(t, "page=2&view=1", f.Encode())
}

func TestParseQueryRoundTrip(t *testing.T) {
	cases := []FilterState{
		DefaultFilter(),
		{Page: 1, Category: "Park", View: ViewAnalytics},
		{Page: 7, Category: AllCategories, Search: "café & bar", View: ViewMap},
		{Page: 42, Category: "Museum", Search: "a=b?c", View: ViewList},
	}

	for _, want := range cases {
		got, err := ParseQuery(want.Encode())
		require.NoError(t, err)
		assert.Equal(t, want, got, "round trip of %q", want.Encode())
	}
}

func TestParseQueryFallsBackToDefaults(t *testing.T) {
	got, err := ParseQuery("?page=abc&view=9&category=")
	require.NoError(t, err)
	assert.Equal(t, DefaultFilter(), got)

	got, err = ParseQuery("page=-4&view=-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultFilter(), got)
}

func TestParseQueryMalformedKeepsValidPairs(t *testing.T) {
	got, err := ParseQuery("category=Food&search=%zz")
	assert.Error(t, err)
	assert.Equal(t, "Food", got.Category)
}

func TestFetchKeyIgnoresView(t *testing.T) {
	a := FilterState{Page: 1, Category: "Food", View: ViewAnalytics}
	b := a
	b.View = ViewMap
	assert.Equal(t, a.FetchKey(), b.FetchKey())

	b.Page = 2
	assert.NotEqual(t, a.FetchKey(), b.FetchKey())
}

func TestNormalizeEmotions(t *testing.T) {
	sadness := 3.456
	got := NormalizeEmotions(&poi.EmotionAverages{AvgJoy: nil, AvgSadness: &sadness})

	assert.Equal(t, Emotions{AvgSadness: 3.46}, got)
	assert.Equal(t, Emotions{}, NormalizeEmotions(nil))
}

func TestCategoryNamesPrefersLabel(t *testing.T) {
	got := CategoryNames([]poi.CategoryCount{
		{Label: "Food", Count: 3},
		{ID: "Park", Count: 1},
		{Count: 9},
	})
	assert.Equal(t, []string{"Food", "Park"}, got)
}

func TestPageInfo(t *testing.T) {
	p := PageInfo{CurrentPage: 1, TotalPages: 3}
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p.CurrentPage = 3
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}
