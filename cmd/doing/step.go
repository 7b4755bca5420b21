package main

import (
	"github.com/aretw0/doing/internal/cli"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step <control>...",
	Short: "Drive a single doer by hand",
	Long: `Sends each control (enter, recur, exit, abort) to a fresh doer and prints
the resulting transitions. Unknown controls abort the doer.`,
	Example: "  doing step recur recur enter exit",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		tock, _ := cmd.Flags().GetFloat64("tock")
		failOn, _ := cmd.Flags().GetString("fail-on")

		return cli.Step(cmd.Context(), cli.StepOptions{
			Controls: args,
			Tock:     tock,
			FailOn:   failOn,
			JSON:     jsonMode,
			Log:      logOptions(cmd),
			Out:      cmd.OutOrStdout(),
			ErrOut:   cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().Bool("json", false, "Print the trace as NDJSON")
	stepCmd.Flags().Float64("tock", 0, "Interval hint of the doer")
	stepCmd.Flags().String("fail-on", "", "Make this hook fail on its first call (enter, recur, exit)")
}
