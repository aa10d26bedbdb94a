package main

import (
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	applog "github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/spf13/cobra"
)

var envFiles []string

// rootCmd 不带子命令时等同于 serve
var rootCmd = &cobra.Command{
	Use:   "ontario-triage",
	Short: "Ontario medical triage service",
	Long: `ontario-triage serves the triage chat API and manages the document corpus.

Example usage:
  ontario-triage                       # Start the HTTP + MCP server
  ontario-triage serve                 # Same as above
  ontario-triage ingest docs.json      # Ingest one or more {"documents":[...]} files`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}
		applog.Init(nil)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env when present)")
	rootCmd.AddCommand(serveCmd, ingestCmd)
}
