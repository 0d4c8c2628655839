package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the dashboard once and print its state",
		RunE:  runSnapshot,
	}

	addFilterFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	session, err := load(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	snap := session.Snapshot()
	out := cmd.OutOrStdout()

	if formatFlag == "text" {
		view := snap.View
		fmt.Fprintf(out, "query:      %s\n", snap.Query)
		fmt.Fprintf(out, "page:       %d of %d\n", view.Pagination.CurrentPage, view.Pagination.TotalPages)
		fmt.Fprintf(out, "pois:       %d\n", len(view.POIs))
		fmt.Fprintf(out, "categories: %v\n", view.Aggregates.Categories)
		for _, s := range view.Aggregates.Sentiment {
			fmt.Fprintf(out, "sentiment:  %s %d\n", s.Label, s.Count)
		}
		return nil
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}
