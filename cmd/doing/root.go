package main

import (
	"fmt"
	"os"

	"github.com/aretw0/doing/internal/cli"
	"github.com/aretw0/doing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doing",
	Short: "doing drives cooperative doers step by step",
	Long: `doing runs plans of cooperative doers: small units that enter, recur and exit
one step at a time under a single driver.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout())
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); empty disables logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}

func logOptions(cmd *cobra.Command) cli.LogOptions {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return cli.LogOptions{Level: level, Format: format}
}
