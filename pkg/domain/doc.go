/*
Package domain contains the core vocabulary of the doing engine.

It defines the closed sets of operational States and driver Controls, the
errors surfaced by a Doer, the Snapshot recorded by drivers and the
observability events emitted on every transition. This package is kept pure
and free of external dependencies like I/O or persistence.

# Key Entities

  - State: The externally observable lifecycle position of a Doer.
  - Control: A driver-supplied directive (Enter, Recur, Exit, Abort).
  - Snapshot: A point-in-time view of a Doer, used by stores and the HTTP API.
  - LifecycleHooks: Callbacks fired on transitions and hook failures.
*/
package domain
