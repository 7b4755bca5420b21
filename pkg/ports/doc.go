/*
Package ports defines the interfaces that decouple the doing core from the
code attached to it.

# Key Interfaces

  - Hooks: The unit's own setup, work and teardown (enter, recur, exit).
  - Unit: The narrow view of a Doer that hooks may read and steer.
  - StatusStore: Persists the latest Snapshot of each Doer for monitoring.
  - DriverLocker: Keeps a plan driven by a single process at a time.
*/
package ports
