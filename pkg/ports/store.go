package ports

import (
	"context"

	"github.com/aretw0/doing/pkg/domain"
)

// StatusStore defines the interface for recording the latest Snapshot of each Doer.
// The Doer itself is never restored from a store; snapshots are for drivers and monitors.
type StatusStore interface {
	// Save records the snapshot under snap.Name, replacing any previous one.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Load retrieves the snapshot of a named Doer.
	// Returns domain.ErrDoerNotFound if nothing was recorded.
	Load(ctx context.Context, name string) (domain.Snapshot, error)

	// Delete removes the snapshot of a named Doer.
	Delete(ctx context.Context, name string) error

	// List returns the names of all recorded Doers.
	List(ctx context.Context) ([]string, error)
}
