package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigFile string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "bedsync",
		Short: "bedsync - bed status sync for CleanFlow",
		Long: `bedsync mirrors bed status from a hospital information system into the
CleanFlow location store and tracks the cleaning lifecycle of each bed.
It serves the HTTP API and runs the scheduled sync.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Optional config file (env vars take precedence)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newIntegrationCmd(opts),
		newMappingCmd(opts),
	)

	return rootCmd
}
