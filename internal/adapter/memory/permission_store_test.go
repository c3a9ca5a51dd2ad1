package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/ticketdash/internal/domain"
)

func TestPermissionStore_CRUD(t *testing.T) {
	store := NewPermissionStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "111")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "111", domain.PermissionSet{"dashboard": true}))
	perms, ok, err := store.Get(ctx, "111")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.PermissionSet{"dashboard": true}, perms)

	require.NoError(t, store.Delete(ctx, "111"))
	_, ok, _ = store.Get(ctx, "111")
	assert.False(t, ok)
}

func TestPermissionStore_ReturnsCopies(t *testing.T) {
	store := NewPermissionStore()
	ctx := context.Background()

	input := domain.PermissionSet{"dashboard": true}
	require.NoError(t, store.Set(ctx, "111", input))
	input["dashboard"] = false

	got, _, _ := store.Get(ctx, "111")
	got["extra"] = 1

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionSet{"dashboard": true}, all["111"])
}

func TestPermissionStore_ConcurrentWrites(t *testing.T) {
	store := NewPermissionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, fmt.Sprintf("user-%d", i%5), domain.PermissionSet{"n": i})
			_, _ = store.All(ctx)
		}()
	}
	wg.Wait()

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
