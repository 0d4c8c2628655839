// internal/server/handlers/dashboard.go

package handlers

import (
	"context"
	"net/http"

	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
	dashboardService "poidash/internal/service/dashboard"
	"poidash/internal/service/export"
)

// DashboardResponse is the body of a one-shot dashboard request
type DashboardResponse struct {
	Filter dashboard.FilterState `json:"filter"`
	Query  string                `json:"query"`
	View   dashboard.ViewState   `json:"view"`
}

// DashboardHandler serves one-shot dashboard refreshes
type DashboardHandler struct {
	source poi.Source
	config dashboardService.SessionConfig
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(source poi.Source, config dashboardService.SessionConfig) *DashboardHandler {
	return &DashboardHandler{
		source: source,
		config: config,
	}
}

// GetDashboard runs a refresh for the filter in the request query and
// returns the resulting view. A failed load is reported in view.error.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	filter, view, _ := h.load(r.Context(), r.URL.RawQuery)

	respondWithJSON(w, http.StatusOK, DashboardResponse{
		Filter: filter,
		Query:  filter.Encode(),
		View:   view,
	})
}

// Export returns the current page of the filter as a CSV attachment
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	_, view, err := h.load(r.Context(), r.URL.RawQuery)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to load data", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.Serialize(view.POIs)))
}

func (h *DashboardHandler) load(ctx context.Context, query string) (dashboard.FilterState, dashboard.ViewState, error) {
	// Malformed pairs are dropped; the rest of the query still applies
	filter, _ := dashboard.ParseQuery(query)

	orchestrator := dashboardService.NewOrchestrator(h.source, dashboardService.OrchestratorConfig{
		PageLimit:      h.config.PageLimit,
		RefreshTimeout: h.config.RefreshTimeout,
	})
	err := orchestrator.Refresh(ctx, filter)

	return filter, orchestrator.View(), err
}
