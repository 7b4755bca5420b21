/*
Package runner implements a cooperative driver for a set of Doers.

The Runner owns the ordering across Doers. It enters every Doer, then on each
tick steps the Doers that are due, translating each Doer's desire into the
next control and rescheduling it by its Tock. Doers that finish (clean exit)
or abort are removed. When the run ends early every remaining Doer gets a
clean Exit.

# Usage

	r := runner.New(
		runner.WithLogger(logger),
		runner.WithLimit(10*time.Second),
		runner.WithStore(memory.NewStore()),
	)
	_ = r.Add(doing.New(doing.WithName("poller"), doing.WithTock(0.5), doing.WithHooks(h)))

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
