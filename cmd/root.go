// Package cmd implements the codecanvas CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codecanvas",
	Short: "Local Gemini chat client with a code canvas",
	Long: `CodeCanvas is a local, browser-based chat client for the Gemini API
with an embedded multi-file code editor. Code blocks in model answers
become editable files with undo/redo and a live HTML preview.

Running codecanvas without arguments starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
