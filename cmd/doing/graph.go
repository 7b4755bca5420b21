package main

import (
	"github.com/aretw0/doing/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the doer state diagram (Mermaid)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
