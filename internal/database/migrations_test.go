package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("documents table exists", func(t *testing.T) {
		var exists bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = 'documents'
			)
		`).Scan(&exists)

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("documents table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"seq":        "bigint",
			"collection": "character varying",
			"id":         "character varying",
			"data":       "jsonb",
			"created_at": "timestamp with time zone",
			"updated_at": "timestamp with time zone",
		}

		rows, err := testDB.GetRawConn().Query(`
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = 'documents'
		`)
		require.NoError(t, err)
		defer rows.Close()

		actual := make(map[string]string)
		for rows.Next() {
			var name, dataType string
			require.NoError(t, rows.Scan(&name, &dataType))
			actual[name] = dataType
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, expectedColumns, actual)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, testDB.Migrate())
	})

	t.Run("position index exists", func(t *testing.T) {
		var exists bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (SELECT FROM pg_indexes WHERE indexname = 'idx_documents_position_id')
		`).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("order index exists", func(t *testing.T) {
		var exists bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (SELECT FROM pg_indexes WHERE indexname = 'idx_documents_order_id')
		`).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
