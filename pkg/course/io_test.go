package course

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldops/coursenav/pkg/datastructure"
)

func TestSaveLoadCourse(t *testing.T) {
	g := buildTestCourse()
	path := filepath.Join(t.TempDir(), "course.bin")

	err := SaveToFile(g, path)
	assert.NoError(t, err)

	// a plain data file, not an executable
	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0), info.Mode().Perm()&0111)

	loaded, err := LoadFromFile(path)
	assert.NoError(t, err)

	assert.Equal(t, g.NumSegments(), loaded.NumSegments())
	assert.Equal(t, g.NumTransitions(), loaded.NumTransitions())
	assert.Equal(t, g.Segment(1).ForwardTransitions, loaded.Segment(1).ForwardTransitions)
	assert.Equal(t, g.Transition(0).Path, loaded.Transition(0).Path)

	// the spatial index is rebuilt on load
	seg, ok := loaded.FindClosestSegment(datastructure.NewPose(5, 0.2, 0), 0.5, 0.5)
	assert.True(t, ok)
	assert.Equal(t, int32(0), seg.ID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err)
}
