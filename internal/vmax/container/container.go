// Package container reads the chunked binary property-list files VoxelMax
// writes (contentsN.vmaxb and paletteN.settings.vmaxpsb). Files are either
// raw binary plists or a compressed frame around one; the codec itself stays
// behind the BufferDecoder boundary.
package container

import (
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"howett.net/plist"
)

// BufferDecoder decompresses src into dst and reports how many bytes were
// written. A return of 0 or exactly len(dst) means dst may be too small and
// the caller should retry with a larger buffer.
type BufferDecoder func(dst, src []byte) (int, error)

// Output buffers start at 8x the compressed size and double on each retry.
const (
	growFactor  = 8
	maxAttempts = 8
)

var ErrDecompress = errors.New("container: decompression failed")

// Decompress runs dec with a grow-and-retry output buffer.
func Decompress(src []byte, dec BufferDecoder) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrDecompress
	}
	size := len(src) * growFactor
	for attempt := 0; attempt < maxAttempts; attempt++ {
		dst := make([]byte, size)
		n, err := dec(dst, src)
		if err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
		if n == 0 || n == len(dst) {
			size *= 2
			continue
		}
		return dst[:n], nil
	}
	return nil, ErrDecompress
}

var zstdReader, _ = zstd.NewReader(nil)

// ZstdDecoder is the stock BufferDecoder for zstd-framed containers. It
// writes into dst in place; when the output would not fit it signals a
// too-small buffer by reporting len(dst).
func ZstdDecoder(dst, src []byte) (int, error) {
	out, err := zstdReader.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return len(dst), nil
	}
	copy(dst, out)
	return len(out), nil
}

// ParseTree parses raw plist bytes into a generic tree of
// map[string]interface{} / []interface{} / scalar nodes.
func ParseTree(raw []byte) (interface{}, error) {
	var tree interface{}
	if _, err := plist.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("container: parse plist: %w", err)
	}
	return tree, nil
}

// ReadTree loads a container file. A nil dec means the file is stored
// uncompressed (material settings are; model data usually is not).
func ReadTree(path string, dec BufferDecoder) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		if raw, err = Decompress(raw, dec); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return ParseTree(raw)
}

// NestedNode walks dictionary keys from root and returns the node at the end
// of the path, or nil if any step is missing or not a dictionary.
func NestedNode(root interface{}, path ...string) interface{} {
	cur := root
	for _, key := range path {
		dict, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = dict[key]
	}
	return cur
}

// Snapshots returns the ordered snapshot array of a parsed model tree.
func Snapshots(root interface{}) ([]interface{}, error) {
	node := NestedNode(root, "snapshots")
	arr, ok := node.([]interface{})
	if !ok {
		return nil, errors.New("container: no snapshots array")
	}
	return arr, nil
}

// Uint extracts an integer scalar regardless of the signedness the plist
// decoder picked.
func Uint(node interface{}) (uint64, bool) {
	switch v := node.(type) {
	case uint64:
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// Data extracts a binary-data scalar.
func Data(node interface{}) ([]byte, bool) {
	b, ok := node.([]byte)
	return b, ok
}

// Float extracts a real scalar, accepting integer nodes as well.
func Float(node interface{}) (float64, bool) {
	switch v := node.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bool extracts a boolean scalar, accepting the 0/1 integers binary plists
// sometimes use.
func Bool(node interface{}) (bool, bool) {
	switch v := node.(type) {
	case bool:
		return v, true
	case uint64:
		return v != 0, true
	case int64:
		return v != 0, true
	default:
		return false, false
	}
}

// String extracts a string scalar.
func String(node interface{}) (string, bool) {
	s, ok := node.(string)
	return s, ok
}
