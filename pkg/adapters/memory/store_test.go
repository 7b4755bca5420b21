package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/doing/pkg/adapters/memory"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStatusStoreContract(t, memory.NewStore())
}

func TestMemoryStore_ListIsSorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, store.Save(ctx, domain.Snapshot{Name: name}))
	}

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.Snapshot{Name: "shared", Steps: i})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	_, err := store.Load(ctx, "shared")
	assert.NoError(t, err)
}
