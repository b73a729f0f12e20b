package kv

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"

	"github.com/fieldops/coursenav/pkg/datastructure"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPathCacheRoundTrip(t *testing.T) {
	cache := NewPathCache(openTestDB(t))

	path := []datastructure.Pose{
		datastructure.NewPose(1, 2, 0.5),
		datastructure.NewPose(3, 4, -1.2),
	}
	key := PathKey(path[0], path[1])

	err := cache.PutPath(key, path, 12.7)
	assert.NoError(t, err)

	got, cost, err := cache.GetPath(key)
	assert.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, 12.7, cost)
}

func TestPathCacheMiss(t *testing.T) {
	cache := NewPathCache(openTestDB(t))

	_, _, err := cache.GetPath(PathKey(datastructure.NewPose(0, 0, 0), datastructure.NewPose(1, 1, 0)))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestPathKeyRounding(t *testing.T) {
	a := PathKey(datastructure.NewPose(1.0001, 2.0, 0), datastructure.NewPose(3, 4, 0))
	b := PathKey(datastructure.NewPose(1.0004, 2.0, 0), datastructure.NewPose(3, 4, 0))
	c := PathKey(datastructure.NewPose(1.1, 2.0, 0), datastructure.NewPose(3, 4, 0))

	// centimeter jitter maps to the same key, real movement does not
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
