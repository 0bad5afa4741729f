package sift

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.MessageRepository())
		assert.NotNil(t, db.SessionRepository())
		assert.NotNil(t, db.VectorStore())
		assert.NotNil(t, db.Provider())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("in-memory database needs no path", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory())
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NoError(t, db.Close())
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create backfill runner", func(t *testing.T) {
		runner, err := db.NewBackfillRunner(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, runner)
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
		searcher.Close()
	})

	t.Run("aggregate health on an empty store", func(t *testing.T) {
		report, err := db.Health(context.Background(), "")
		require.NoError(t, err)
		assert.Zero(t, report.Sessions)
	})
}
