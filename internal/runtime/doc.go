/*
Package runtime implements the Doer state machine.

The machine is an explicit state object plus a total transition table keyed by
control and then by state. Each Step runs exactly one table cell; hooks run
inside the cell and any failure is unwound to the terminal Aborted state.
*/
package runtime
