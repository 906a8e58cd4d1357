// Package cli implements the planner command, a terminal client for
// synchronized trip-planner state.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	scopeID  string
	stateKey string
	rootCmd  *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "planner",
		Short: "Trip planner state client",
		Long: `planner reads and edits trip-planner documents.

Edits land in the local cache immediately and are uploaded to the backend
after a short quiet period. Set PLANNER_TOKEN to sync; without it the planner
works offline against the local cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&scopeID, "scope", "", "trip or booking id")
	rootCmd.PersistentFlags().StringVar(&stateKey, "key", "itinerary", "document name within the scope")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(accessCmd)
}

// ExecuteContext runs the root command until ctx is cancelled.
func ExecuteContext(ctx context.Context, version string) error {
	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
