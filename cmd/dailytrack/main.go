package main

import (
	"context"
	"dailytrack/internal"
	"dailytrack/internal/di"
	"dailytrack/internal/structures"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var version = "dev"

var flags structures.CliFlags

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp builds the application graph. The caller owns the returned App.
func newApp() (*internal.App, error) {
	a, err := di.InitApp(&flags)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "dailytrack",
	Short: "Personal daily metrics engine",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return a.Run()
	},
}

var syncTimeout time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile steps and weight from the health data service once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
		defer cancel()
		result := a.SyncOnce(ctx)

		closeErr := a.Close()

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if result.StepsError != "" && result.WeightError != "" {
			return fmt.Errorf("sync failed: steps: %s; weight: %s", result.StepsError, result.WeightError)
		}
		return closeErr
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config/config.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "enable debug logging")

	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", time.Minute, "overall timeout for the sync pass")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}
