// internal/service/dashboard/orchestrator.go

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
)

// ErrStale is returned by Refresh when a newer refresh started before this
// one settled. Its result was discarded.
var ErrStale = errors.New("refresh superseded by a newer one")

// OrchestratorConfig contains configuration for the data orchestrator
type OrchestratorConfig struct {
	PageLimit      int
	RefreshTimeout time.Duration
}

// Orchestrator loads the five data sets for a filter state and commits them
// to the view state as one unit.
type Orchestrator struct {
	source      poi.Source
	config      OrchestratorConfig
	mu          sync.Mutex
	generation  uint64
	view        dashboard.ViewState
	subscribers map[int]func(dashboard.ViewState)
	nextID      int
}

// NewOrchestrator creates a new data orchestrator
func NewOrchestrator(source poi.Source, config OrchestratorConfig) *Orchestrator {
	if config.PageLimit <= 0 {
		config.PageLimit = 50
	}
	return &Orchestrator{
		source:      source,
		config:      config,
		view:        dashboard.EmptyView(),
		subscribers: make(map[int]func(dashboard.ViewState)),
	}
}

// View returns a copy of the current view state
func (o *Orchestrator) View() dashboard.ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view.Clone()
}

// Subscribe registers fn for every published view state and returns a cancel func
func (o *Orchestrator) Subscribe(fn func(dashboard.ViewState)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

// fetchResult holds the settled outcome of the five requests
type fetchResult struct {
	page       poi.PaginatedResponse
	sentiment  []poi.SentimentCount
	categories []poi.CategoryCount
	emotions   *poi.EmotionAverages
	geo        []poi.GeoPoint
	err        error
}

// Refresh loads data for filter and commits it unless a newer refresh was
// started in the meantime. Failures are reported in the view state; the
// returned error is informational.
func (o *Orchestrator) Refresh(ctx context.Context, filter dashboard.FilterState) error {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.view.Loading = true
	o.view.Error = ""
	o.publishLocked()
	o.mu.Unlock()

	if o.config.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RefreshTimeout)
		defer cancel()
	}

	result := o.fetchAll(ctx, filter)

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		return ErrStale
	}

	if result.err != nil {
		log.Printf("Failed to refresh dashboard (generation %d): %v", gen, result.err)
		o.view.Loading = false
		o.view.Error = dashboard.ErrorLoading
		o.publishLocked()
		return result.err
	}

	o.view = dashboard.ViewState{
		POIs: result.page.Data,
		Pagination: dashboard.PageInfo{
			CurrentPage: filter.Page,
			TotalPages:  result.page.Pagination.TotalPages,
		},
		Aggregates: dashboard.Aggregates{
			Sentiment:  result.sentiment,
			Emotions:   dashboard.NormalizeEmotions(result.emotions),
			Categories: dashboard.CategoryNames(result.categories),
			Geo:        result.geo,
		},
		Loading:    false,
		Generation: gen,
	}
	o.publishLocked()

	return nil
}

// fetchAll issues the five requests concurrently and waits for all of them
func (o *Orchestrator) fetchAll(ctx context.Context, filter dashboard.FilterState) fetchResult {
	var (
		result fetchResult
		wg     sync.WaitGroup
		errMu  sync.Mutex
	)

	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errMu.Lock()
					if result.err == nil {
						result.err = fmt.Errorf("%s: panic: %v", name, r)
					}
					errMu.Unlock()
				}
			}()
			fn()
		}()
	}

	run("pois", func() {
		page, err := o.source.ListPOIs(ctx, poi.ListParams{
			Page:     filter.Page,
			Limit:    o.config.PageLimit,
			Category: filter.Category,
			Search:   filter.Search,
		})
		result.page = page
		if err != nil {
			errMu.Lock()
			if result.err == nil {
				result.err = err
			}
			errMu.Unlock()
		}
	})
	run("sentiment", func() {
		result.sentiment = o.source.SentimentAnalytics(ctx)
	})
	run("categories", func() {
		result.categories = o.source.CategoryAnalytics(ctx)
	})
	run("emotions", func() {
		result.emotions = o.source.EmotionAnalytics(ctx)
	})
	run("geo", func() {
		result.geo = o.source.GeoData(ctx, poi.GeoParams{Category: filter.Category})
	})

	wg.Wait()

	if result.page.Data == nil {
		result.page.Data = []poi.POI{}
	}
	if result.sentiment == nil {
		result.sentiment = []poi.SentimentCount{}
	}
	if result.geo == nil {
		result.geo = []poi.GeoPoint{}
	}

	return result
}

// publishLocked delivers a copy of the view to subscribers. Callers hold o.mu,
// so subscribers must not call back into the orchestrator.
func (o *Orchestrator) publishLocked() {
	for id := 0; id < o.nextID; id++ {
		if fn, ok := o.subscribers[id]; ok {
			fn(o.view.Clone())
		}
	}
}
