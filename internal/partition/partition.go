// Package partition splits a symbol universe into bounded subscription groups,
// one per upstream connection.
package partition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSize is returned when the maximum group size is below one.
var ErrInvalidSize = errors.New("max group size must be >= 1")

// Group is an immutable batch of stream identifiers owned by one connector.
type Group struct {
	ID      int
	Streams []string
}

// Path joins the group's streams with sep, e.g. "btcusdt@ticker/ethusdt@ticker".
func (g Group) Path(sep string) string {
	return strings.Join(g.Streams, sep)
}

// Len returns the number of streams in the group.
func (g Group) Len() int {
	return len(g.Streams)
}

func (g Group) String() string {
	return fmt.Sprintf("group %d (%d streams)", g.ID, len(g.Streams))
}

// Chunk slices items into consecutive chunks of at most size elements.
// Concatenating the chunks in order yields items.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunk := make([]T, end-start)
		copy(chunk, items[start:end])
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Build renders each symbol as lower(symbol)+suffix and chunks the result into
// groups numbered from 1. The same input always produces the same groups.
func Build(symbols []string, suffix string, maxGroupSize int) ([]Group, error) {
	streams := make([]string, len(symbols))
	for i, s := range symbols {
		streams[i] = strings.ToLower(s) + suffix
	}
	return FromStreams(streams, maxGroupSize)
}

// FromStreams chunks already-rendered stream identifiers into groups numbered
// from 1.
func FromStreams(streams []string, maxGroupSize int) ([]Group, error) {
	chunks, err := Chunk(streams, maxGroupSize)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, len(chunks))
	for i, c := range chunks {
		groups[i] = Group{ID: i + 1, Streams: c}
	}
	return groups, nil
}
