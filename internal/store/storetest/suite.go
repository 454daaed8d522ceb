// Package storetest holds the behaviour every store.Gateway must satisfy.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-service/internal/store"
)

// Run exercises gw against the Gateway contract. gw must start empty.
func Run(t *testing.T, gw store.Gateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("Ping succeeds", func(t *testing.T) {
		require.NoError(t, gw.Ping(ctx))
	})

	t.Run("List on empty collection returns empty", func(t *testing.T) {
		docs, err := gw.List(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Create assigns id and Get returns it", func(t *testing.T) {
		id, err := gw.Create(ctx, "create", "", store.Document{"ticker": "PETR4", "quantidade": 10.0})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := gw.Get(ctx, "create", id)
		require.NoError(t, err)
		assert.Equal(t, id, doc["id"])
		assert.Equal(t, "PETR4", doc["ticker"])
		assert.Equal(t, 10.0, doc["quantidade"])
	})

	t.Run("Create with explicit id overwrites", func(t *testing.T) {
		id, err := gw.Create(ctx, "explicit", "fixed", store.Document{"a": "1", "b": "2"})
		require.NoError(t, err)
		assert.Equal(t, "fixed", id)

		_, err = gw.Create(ctx, "explicit", "fixed", store.Document{"a": "3"})
		require.NoError(t, err)

		doc, err := gw.Get(ctx, "explicit", "fixed")
		require.NoError(t, err)
		assert.Equal(t, "3", doc["a"])
		assert.NotContains(t, doc, "b")

		docs, err := gw.List(ctx, "explicit")
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("Get missing returns ErrNotFound", func(t *testing.T) {
		_, err := gw.Get(ctx, "create", "missing")
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("List keeps insertion order across replace", func(t *testing.T) {
		var ids []string
		for _, ticker := range []string{"A", "B", "C"} {
			id, err := gw.Create(ctx, "order", "", store.Document{"ticker": ticker})
			require.NoError(t, err)
			ids = append(ids, id)
		}

		require.NoError(t, gw.Replace(ctx, "order", ids[0], store.Document{"ticker": "A2"}))

		docs, err := gw.List(ctx, "order")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []any{"A2", "B", "C"}, []any{docs[0]["ticker"], docs[1]["ticker"], docs[2]["ticker"]})
		for i, doc := range docs {
			assert.Equal(t, ids[i], doc["id"])
		}
	})

	t.Run("Replace drops fields not in the new document", func(t *testing.T) {
		id, err := gw.Create(ctx, "replace", "", store.Document{"a": 1.0, "b": 2.0})
		require.NoError(t, err)

		require.NoError(t, gw.Replace(ctx, "replace", id, store.Document{"a": 5.0, "id": "ignored"}))

		doc, err := gw.Get(ctx, "replace", id)
		require.NoError(t, err)
		assert.Equal(t, 5.0, doc["a"])
		assert.NotContains(t, doc, "b")
		assert.Equal(t, id, doc["id"])
	})

	t.Run("Replace missing returns ErrNotFound", func(t *testing.T) {
		err := gw.Replace(ctx, "replace", "missing", store.Document{"a": 1.0})
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("Delete removes document", func(t *testing.T) {
		id, err := gw.Create(ctx, "delete", "", store.Document{"a": 1.0})
		require.NoError(t, err)

		require.NoError(t, gw.Delete(ctx, "delete", id))

		_, err = gw.Get(ctx, "delete", id)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		err = gw.Delete(ctx, "delete", id)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		_, err := gw.Create(ctx, "left", "shared", store.Document{"side": "left"})
		require.NoError(t, err)
		_, err = gw.Create(ctx, "right", "shared", store.Document{"side": "right"})
		require.NoError(t, err)

		left, err := gw.Get(ctx, "left", "shared")
		require.NoError(t, err)
		assert.Equal(t, "left", left["side"])

		require.NoError(t, gw.Delete(ctx, "left", "shared"))
		right, err := gw.Get(ctx, "right", "shared")
		require.NoError(t, err)
		assert.Equal(t, "right", right["side"])
	})

	t.Run("nested and null values survive", func(t *testing.T) {
		id, err := gw.Create(ctx, "values", "", store.Document{
			"resultado_monetario": nil,
			"flag":                true,
			"when":                "2024-01-01T12:00:00Z",
		})
		require.NoError(t, err)

		doc, err := gw.Get(ctx, "values", id)
		require.NoError(t, err)
		v, ok := doc["resultado_monetario"]
		assert.True(t, ok)
		assert.Nil(t, v)
		assert.Equal(t, true, doc["flag"])
		assert.Equal(t, "2024-01-01T12:00:00Z", doc["when"])
	})

	t.Run("ListByField filters on a string field in insertion order", func(t *testing.T) {
		for i, owner := range []string{"a", "b", "a"} {
			_, err := gw.Create(ctx, "filtered", "", store.Document{"position_id": owner, "n": float64(i)})
			require.NoError(t, err)
		}
		_, err := gw.Create(ctx, "filtered", "", store.Document{"position_id": 7.0})
		require.NoError(t, err)
		_, err = gw.Create(ctx, "other", "", store.Document{"position_id": "a"})
		require.NoError(t, err)

		docs, err := store.ListByField(ctx, gw, "filtered", "position_id", "a")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, 0.0, docs[0]["n"])
		assert.Equal(t, 2.0, docs[1]["n"])
		assert.NotEmpty(t, docs[0]["id"])

		none, err := store.ListByField(ctx, gw, "filtered", "position_id", "z")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
