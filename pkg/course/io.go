package course

import (
	"fmt"
	"os"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

type courseFile struct {
	Segments    []Segment
	Transitions []Transition
}

// SaveToFile writes the graph as a zstd-compressed binary file.
func SaveToFile(g *Graph, path string) error {
	encoded, err := binary.Marshal(courseFile{
		Segments:    g.segments,
		Transitions: g.transitions,
	})
	if err != nil {
		return fmt.Errorf("encode course graph: %w", err)
	}

	var compressed []byte
	compressed, err = zstd.Compress(compressed, encoded)
	if err != nil {
		return fmt.Errorf("compress course graph: %w", err)
	}

	return os.WriteFile(path, compressed, 0644)
}

// LoadFromFile reads a graph written by SaveToFile.
func LoadFromFile(path string) (*Graph, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course graph file: %w", err)
	}

	var encoded []byte
	encoded, err = zstd.Decompress(encoded, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress course graph: %w", err)
	}

	var cf courseFile
	if err := binary.Unmarshal(encoded, &cf); err != nil {
		return nil, fmt.Errorf("decode course graph: %w", err)
	}

	return NewGraph(cf.Segments, cf.Transitions), nil
}
