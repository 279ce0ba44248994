package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize assistant storage",
		Long: `Create the configuration and data directories, write a default
config.yaml when missing, then initialize the storage backend.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Assistant initialized successfully")
			fmt.Fprintf(out, "config: %s\ndata:   %s\n", a.configDir, a.backend.DataDir())
			return nil
		},
	}
}
