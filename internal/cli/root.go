// Package cli implements the poidash command line: one-shot dashboard
// loads, CSV export and share link building against the analytics API.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"poidash/internal/adapter/analytics"
	"poidash/internal/domain/dashboard"
	dashboardService "poidash/internal/service/dashboard"
)

const defaultAPIURL = "http://localhost:3001/api"

var (
	apiURL     string
	timeout    time.Duration
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "poidash",
	Short:        "POI sentiment dashboard controller",
	Long:         "Load, export and share views of the POI sentiment dashboard from the command line.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Analytics API base URL (default: $ANALYTICS_BASE_URL or "+defaultAPIURL+")")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Timeout for one dashboard load")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getAPIURL() string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	if env := os.Getenv("ANALYTICS_BASE_URL"); env != "" {
		return strings.TrimRight(env, "/")
	}
	return defaultAPIURL
}

// addFilterFlags registers the flags that select a filter state
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("query", "q", "", "Persisted query to start from, e.g. 'category=museum&page=2'")
	cmd.Flags().StringP("category", "c", "", "Category filter ('all' clears it)")
	cmd.Flags().StringP("search", "s", "", "Search text")
	cmd.Flags().IntP("page", "p", 0, "Page number")
	cmd.Flags().Int("view", 0, "Active view: 0 analytics, 1 map, 2 list")
}

// filterFromFlags applies the filter flags to the --query state the same way
// the dashboard does: category and search reset the page.
func filterFromFlags(cmd *cobra.Command) (dashboard.FilterState, *dashboardService.History, error) {
	query, _ := cmd.Flags().GetString("query")
	initial, err := dashboard.ParseQuery(query)
	if err != nil {
		return initial, nil, fmt.Errorf("invalid query %q: %w", query, err)
	}

	history := dashboardService.NewHistory(initial.Encode())
	store := dashboardService.NewStore(initial, history)

	if cmd.Flags().Changed("category") {
		category, _ := cmd.Flags().GetString("category")
		store.SetCategory(category)
	}
	if cmd.Flags().Changed("search") {
		search, _ := cmd.Flags().GetString("search")
		store.CommitSearch(search)
	}
	if cmd.Flags().Changed("page") {
		page, _ := cmd.Flags().GetInt("page")
		if err := store.SetPage(page); err != nil {
			return initial, nil, err
		}
	}
	if cmd.Flags().Changed("view") {
		view, _ := cmd.Flags().GetInt("view")
		if err := store.SetView(view); err != nil {
			return initial, nil, err
		}
	}

	return store.State(), history, nil
}

// load runs one session refresh for the filter selected by the flags
func load(cmd *cobra.Command) (*dashboardService.Session, error) {
	filter, history, err := filterFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	source := analytics.NewClient(getAPIURL(), timeout)
	session := dashboardService.NewSession(source, history, nil, filter, dashboardService.SessionConfig{
		RefreshTimeout: timeout,
	})

	session.Start()
	session.Wait()

	if view := session.Orchestrator().View(); view.Error != "" {
		session.Close()
		return nil, fmt.Errorf("%s (api %s)", view.Error, getAPIURL())
	}
	return session, nil
}
