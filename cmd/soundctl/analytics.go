package main

import (
	"context"
	"io"
	"time"

	"github.com/soundstage-events/backoffice/analytics"
	"github.com/soundstage-events/backoffice/store"
	"github.com/spf13/cobra"
)

var analyticsYear int

// analyticsCmd represents the analytics command
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the booking report",
	Long:  `Print booking totals, revenue and breakdowns by month, package, event type and venue as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd.Context(), st, analyticsYear, time.Now(), cmd.OutOrStdout())
	},
}

func init() {
	analyticsCmd.Flags().IntVar(&analyticsYear, "year", 0, "Only include events in this year")
}

func runAnalytics(ctx context.Context, st *store.Store, year int, now time.Time, out io.Writer) error {
	bookings, err := st.Bookings.Search(ctx, store.BookingFilter{})
	if err != nil {
		return err
	}
	return printJSON(out, analytics.Build(bookings, now, year))
}
