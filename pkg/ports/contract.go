package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/doing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStatusStoreContract runs a suite of tests to verify that a StatusStore implementation
// adheres to the defined interface contract.
func RunStatusStoreContract(t *testing.T, store StatusStore) {
	ctx := context.Background()
	name := "contract-doer-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			Name:      name,
			State:     domain.StateRecurring,
			Desire:    domain.ControlRecur,
			Done:      false,
			Tock:      0.25,
			Steps:     3,
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}

		err := store.Save(ctx, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, snap.Desire, loaded.Desire)
		assert.Equal(t, snap.Tock, loaded.Tock)
		assert.Equal(t, snap.Steps, loaded.Steps)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Snapshot{Name: name, State: domain.StateEntered}))
		require.NoError(t, store.Save(ctx, domain.Snapshot{Name: name, State: domain.StateExited, Done: true}))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.StateExited, loaded.State)
		assert.True(t, loaded.Done)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrDoerNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.Snapshot{Name: name})
		require.NoError(t, err)

		err = store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDoerNotFound, "Load after Delete should return ErrDoerNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, domain.Snapshot{Name: id1})
		_ = store.Save(ctx, domain.Snapshot{Name: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
