package kv

import (
	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"

	"github.com/fieldops/coursenav/pkg/datastructure"
)

type cachedPath struct {
	Cost float64
	Path []datastructure.Pose
}

func encodePath(cp cachedPath) ([]byte, error) {
	return compress(encode(cp))
}

func loadPath(bbCompressed []byte) (cachedPath, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return cachedPath{}, err
	}
	return decode(bb)
}

func encode(cp cachedPath) []byte {
	encoded, _ := binary.Marshal(cp)
	return encoded
}

func decode(bb []byte) (cachedPath, error) {
	var cp cachedPath
	err := binary.Unmarshal(bb, &cp)
	return cp, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
