package cli

import (
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the sync scheduler",
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), opts)
		},
	}
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync operations",
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Run one manual sync now",
		RunE: func(c *cobra.Command, args []string) error {
			return runSyncOnce(c.Context(), opts)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the stored sync state and recent history",
		RunE: func(c *cobra.Command, args []string) error {
			return runSyncStatus(c.Context(), opts)
		},
	}

	cmd.AddCommand(run, status)
	return cmd
}

func newIntegrationCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration",
		Short: "Inspect and test the external database integration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored integration config (password redacted)",
		RunE: func(c *cobra.Command, args []string) error {
			return runShowIntegration(c.Context(), opts)
		},
	}

	testConn := &cobra.Command{
		Use:   "test-connection",
		Short: "Open a connection to the external database and run SELECT 1",
		RunE: func(c *cobra.Command, args []string) error {
			return runTestConnection(c.Context(), opts)
		},
	}

	testTransform := &cobra.Command{
		Use:   "test-transformation",
		Short: "Run sample rows through the configured transformation",
		RunE: func(c *cobra.Command, args []string) error {
			return runTestTransformation(c.Context(), opts)
		},
	}

	cmd.AddCommand(show, testConn, testTransform)
	return cmd
}

type importOptions struct {
	File string
}

func newMappingCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage location mappings",
	}

	importOpts := &importOptions{}
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert location mappings from a JSON file",
		RunE: func(c *cobra.Command, args []string) error {
			return runMappingImport(c.Context(), opts, importOpts)
		},
	}
	importCmd.Flags().StringVarP(&importOpts.File, "file", "f", "configs/mappings.json", "Path to the mappings file")

	cmd.AddCommand(importCmd)
	return cmd
}
