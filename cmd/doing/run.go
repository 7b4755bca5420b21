package main

import (
	"github.com/aretw0/doing/internal/cli"
	"github.com/aretw0/doing/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Run a plan of doers to completion",
	Long: `Loads a YAML plan, drives its doers until every one finished, the limit
elapsed or the process is interrupted, then prints the step trace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		graphMode, _ := cmd.Flags().GetBool("graph")
		limit, _ := cmd.Flags().GetDuration("limit")
		tock, _ := cmd.Flags().GetDuration("tock")
		serveAddr, _ := cmd.Flags().GetString("serve")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		return cli.Run(signals.Context(), cli.RunOptions{
			PlanPath:  args[0],
			JSON:      jsonMode,
			Graph:     graphMode,
			Limit:     limit,
			Tock:      tock,
			Serve:     serveAddr,
			RedisAddr: redisAddr,
			RedisTTL:  redisTTL,
			Log:       logOptions(cmd),
			Out:       cmd.OutOrStdout(),
			ErrOut:    cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the trace as NDJSON")
	runCmd.Flags().Bool("graph", false, "Append a Mermaid diagram of the transitions taken")
	runCmd.Flags().Duration("limit", 0, "Stop after this long, exiting live doers cleanly (overrides the plan)")
	runCmd.Flags().Duration("tock", 0, "Minimum pause between runner ticks (overrides the plan)")
	runCmd.Flags().String("serve", "", "Expose the status API on this address while running")
	runCmd.Flags().String("redis", "", "Record snapshots in Redis at this address and lock the plan")
	runCmd.Flags().Duration("redis-ttl", 0, "Expire Redis snapshots after this long")
}
