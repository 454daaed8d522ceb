package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-service/internal/store"
	"github.com/trogers1052/carteira-service/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "carteira.json")
	s, err := Open(path)
	require.NoError(t, err)

	storetest.Run(t, s)
}

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "carteira.json")

	s, err := Open(path)
	require.NoError(t, err)

	first, err := s.Create(ctx, "renda_variavel_positions", "", store.Document{"ticker": "ITUB4"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "renda_variavel_positions", "", store.Document{"ticker": "HGLG11"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"renda_variavel_positions"`)
	assert.Contains(t, string(raw), first)

	reopened, err := Open(path)
	require.NoError(t, err)

	docs, err := reopened.List(ctx, "renda_variavel_positions")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0]["id"])
	assert.Equal(t, "ITUB4", docs[0]["ticker"])
	assert.Equal(t, second, docs[1]["id"])
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carteira.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse store file")
}

func TestFileStore_WriteFailureIsFault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carteira.json")
	s, err := Open(path)
	require.NoError(t, err)

	// Pull the directory out from under the store.
	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Create(context.Background(), "passivos", "", store.Document{"nome": "x"})
	require.Error(t, err)
	assert.True(t, store.IsFault(err))
}

func TestFileStore_WriteFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "carteira.json"))
	require.NoError(t, err)

	_, err = s.Create(ctx, "passivos", "casa", store.Document{"nome": "Financiamento"})
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Create(ctx, "passivos", "carro", store.Document{"nome": "Carro"})
	assert.True(t, store.IsFault(err))
	_, err = s.Create(ctx, "renda_fixa_positions", "", store.Document{"ativo": "CDB"})
	assert.True(t, store.IsFault(err))
	err = s.Replace(ctx, "passivos", "casa", store.Document{"nome": "Outro"})
	assert.True(t, store.IsFault(err))
	err = s.Delete(ctx, "passivos", "casa")
	assert.True(t, store.IsFault(err))

	docs, err := s.List(ctx, "passivos")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "casa", docs[0]["id"])
	assert.Equal(t, "Financiamento", docs[0]["nome"])

	docs, err = s.List(ctx, "renda_fixa_positions")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
