package main

import (
	"github.com/aretw0/doing/internal/cli"
	"github.com/aretw0/doing/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve doer status recorded in Redis",
	Long:  `Exposes the snapshots written by 'doing run --redis' over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis")

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.Serve(signals.Context(), cli.ServeOptions{
			Addr:      addr,
			RedisAddr: redisAddr,
			Log:       logOptions(cmd),
			ErrOut:    cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "localhost:6379", "Redis address holding the snapshots")
}
