package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")
	payload := []byte(`{"id":"root","type":"text","content":"Hello"}`)

	t.Run("Save and Fetch", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload), "Save should not return error")

		got, err := store.Fetch(ctx, name)
		require.NoError(t, err, "Fetch should not return error")
		assert.Equal(t, string(payload), string(got))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		next := []byte(`{"id":"root","type":"text","content":"Bye"}`)
		require.NoError(t, store.Save(ctx, name, next))

		got, err := store.Fetch(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, string(next), string(got))
	})

	t.Run("Fetch Non-Existent", func(t *testing.T) {
		_, err := store.Fetch(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, payload))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Fetch(ctx, name)
		assert.ErrorIs(t, err, ErrNotFound, "Fetch after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete of a missing name is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id1, payload))
		require.NoError(t, store.Save(ctx, id2, payload))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.True(t, sort.StringsAreSorted(names), "List should be sorted: %v", names)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
