/*
Package doing is a cooperative task-control primitive for building suspendable,
resumable units of work driven by an external scheduler.

A Doer never runs on its own. Its driver calls Step with a Control (Enter,
Recur, Exit or Abort) and receives the Doer's operational State (Exited,
Entered, Recurring or Aborted) after exactly one transition. Domain logic
attaches through three hooks: Enter, Recur and Exit.

# Concept

The transition table switches on the incoming control rather than on the
current state, so each control has a small, fixed set of rules:

  - Recur on an exited Doer enters and recurs in the same step.
  - Enter on a recurring Doer forces an exit and enters again.
  - Exit is clean: it runs the exit hook and marks the Doer done.
  - Abort, or any unknown control, forces an exit and stops the Doer for good.

A hook that fails (returns an error or panics) never leaves the Doer live: it
is force-exited, parked in Aborted and the failure is handed back to the driver.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/doing"
		"github.com/aretw0/doing/pkg/domain"
		"github.com/aretw0/doing/pkg/ports"
	)

	func main() {
		d := doing.New(
			doing.WithTock(0.5),
			doing.WithHooks(doing.HookFuncs{
				OnRecur: func(ctx context.Context, u ports.Unit) error {
					fmt.Println("working")
					return nil
				},
			}),
		)

		ctx := context.Background()
		for _, c := range []domain.Control{domain.ControlRecur, domain.ControlRecur, domain.ControlExit} {
			state, err := d.Step(ctx, c)
			if err != nil {
				panic(err)
			}
			fmt.Println(state, d.Done())
		}
	}

Drivers that schedule many Doers by their Tock live in the runner package.
*/
package doing
