package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/medtour-be/internal/access"
)

var (
	accessPath string
	viewAs     string
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Ask the backend whether a page may be viewed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := access.ParseViewAs(viewAs)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		d, err := a.client.Access(cmd.Context(), accessPath, v)
		if err != nil {
			return err
		}
		if d.Target != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", d.Path, d.Outcome, d.Target)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Path, d.Outcome)
		return nil
	},
}

func init() {
	accessCmd.Flags().StringVar(&accessPath, "path", "/dashboard", "page path")
	accessCmd.Flags().StringVar(&viewAs, "view-as", "", "admin preview role: admin, provider or traveler")
}
