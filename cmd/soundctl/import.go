package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/soundstage-events/backoffice/csvimport"
	"github.com/soundstage-events/backoffice/store"
	"github.com/spf13/cobra"
)

var importDryRun bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import bookings from a CSV export",
	Long:  `Parse a booking spreadsheet export, skip rows already in the ledger and insert the rest. With --dry-run nothing is written.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return runImport(cmd.Context(), st, f, importDryRun, cmd.OutOrStdout())
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report what would be imported without writing")
}

func runImport(ctx context.Context, st *store.Store, r io.Reader, dryRun bool, out io.Writer) error {
	im := &csvimport.Importer{Ledger: st.Bookings}
	result, err := im.Import(ctx, r, dryRun)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return printJSON(out, result)
}
