package kv

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/util"
)

var (
	ErrPathNotFound = errors.New("path not found")
)

const pathKeyPrefix = "path/"

// PathCache stores previously planned paths keyed by their rounded start and
// end poses, so repeated requests between the same two poses skip the search.
type PathCache struct {
	db *badger.DB
}

func NewPathCache(db *badger.DB) *PathCache {
	return &PathCache{db}
}

// PathKey builds the cache key for a start/end pose pair. Coordinates are
// rounded to centimeters so numerically jittered repeats of the same request
// still hit.
func PathKey(start, end datastructure.Pose) string {
	return fmt.Sprintf("%s%.2f,%.2f,%.2f|%.2f,%.2f,%.2f",
		pathKeyPrefix,
		util.RoundFloat(start.X, 2), util.RoundFloat(start.Y, 2), util.RoundFloat(start.Theta, 2),
		util.RoundFloat(end.X, 2), util.RoundFloat(end.Y, 2), util.RoundFloat(end.Theta, 2))
}

// GetPath returns the cached path and its cost for the key, or
// ErrPathNotFound.
func (c *PathCache) GetPath(key string) ([]datastructure.Pose, float64, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, 0, ErrPathNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	cp, err := loadPath(val)
	if err != nil {
		return nil, 0, err
	}
	return cp.Path, cp.Cost, nil
}

// PutPath stores the path and its cost under the key.
func (c *PathCache) PutPath(key string, path []datastructure.Pose, cost float64) error {
	val, err := encodePath(cachedPath{Cost: cost, Path: path})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}
