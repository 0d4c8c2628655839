package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"poidash/internal/service/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current page of POIs as CSV",
		Long:  "Load the page selected by the filter flags and write it as CSV. Use -o - to write to stdout.",
		RunE:  runExport,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("out", "o", export.Filename, "Output file, or - for stdout")
	cmd.Flags().Bool("quoted", false, "Quote fields that contain commas, quotes or newlines")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	quoted, _ := cmd.Flags().GetBool("quoted")

	session, err := load(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	data := session.Export()
	if quoted {
		if data, err = export.SerializeQuoted(session.Orchestrator().View().POIs); err != nil {
			return fmt.Errorf("quote export: %w", err)
		}
	}

	if out == "-" {
		// The quoted form already ends with a newline
		if quoted {
			fmt.Fprint(cmd.OutOrStdout(), data)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), data)
		}
		return nil
	}

	if err := os.WriteFile(out, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d POIs to %s\n", len(session.Orchestrator().View().POIs), out)
	return nil
}
