package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/soundstage-events/backoffice/config"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"github.com/spf13/cobra"
)

// st is opened by the root command before any subcommand runs.
var st *store.Store

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "soundctl",
	Short:         "Soundstage back-office tools",
	Long:          "Maintenance commands for the Soundstage back office: booking imports, content seeding, admin accounts and booking analytics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if st != nil {
			return nil
		}
		config.LoadConfig()
		if err := utils.InitLogger(config.LogLevel); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if err := utils.ConnectMongo(config.MongoURI); err != nil {
			return err
		}
		st = store.NewMongoStore(utils.GetDatabase(config.DBName))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.DisconnectMongo(context.Background())
		utils.Logger.Sync()
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
