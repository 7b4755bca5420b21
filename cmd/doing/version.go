package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/doing"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of doing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "doing version %s\n", strings.TrimSpace(doing.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
