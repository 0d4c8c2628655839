package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the shareable query for a filter state",
		Long:  "Apply the filter flags to --query and print the resulting persisted query. Default values are omitted.",
		Args:  cobra.NoArgs,
		RunE:  runLink,
	}

	addFilterFlags(cmd)
	cmd.Flags().String("base", "", "Dashboard URL to prefix, e.g. https://dash.example.com/")

	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("base")

	_, history, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	query := history.Current()
	if base != "" && query != "" {
		query = strings.TrimRight(base, "?") + "?" + query
	} else if base != "" {
		query = base
	}

	fmt.Fprintln(cmd.OutOrStdout(), query)
	return nil
}
