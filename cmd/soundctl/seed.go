package main

import (
	"context"
	"io"
	"os"

	"github.com/soundstage-events/backoffice/seed"
	"github.com/soundstage-events/backoffice/store"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed [site.yaml]",
	Short: "Load site content from a YAML file",
	Long:  `Create or update the company profile and about page, and add FAQs, packages and equipment that are not stored yet.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return runSeed(cmd.Context(), st, f, cmd.OutOrStdout())
	},
}

func runSeed(ctx context.Context, st *store.Store, r io.Reader, out io.Writer) error {
	site, err := seed.Parse(r)
	if err != nil {
		return err
	}
	summary, err := seed.Apply(ctx, st, site)
	if err != nil {
		return err
	}
	return printJSON(out, summary)
}
