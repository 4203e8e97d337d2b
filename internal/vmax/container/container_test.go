package container

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"howett.net/plist"
)

func TestDecompressGrowAndRetry(t *testing.T) {
	// Payload is ~40x the compressed input, so the initial 8x buffer must be
	// grown before the decode fits.
	src := []byte("abcd")
	payload := bytes.Repeat([]byte("x"), len(src)*40)
	calls := 0
	dec := func(dst, _ []byte) (int, error) {
		calls++
		if len(dst) < len(payload) {
			return 0, nil
		}
		copy(dst, payload)
		return len(payload), nil
	}

	got, err := Decompress(src, dec)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %d bytes want %d", len(got), len(payload))
	}
	if calls < 2 {
		t.Fatalf("expected at least one retry, got %d calls", calls)
	}
}

func TestDecompressBoundedRetries(t *testing.T) {
	dec := func(dst, _ []byte) (int, error) { return 0, nil }
	if _, err := Decompress([]byte("abcd"), dec); err == nil {
		t.Fatalf("expected error after bounded retries")
	}
}

func TestZstdDecoderRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("voxels "), 4096)
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	compressed := enc.EncodeAll(payload, nil)
	_ = enc.Close()

	got, err := Decompress(compressed, ZstdDecoder)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %d bytes want %d", len(got), len(payload))
	}
}

func TestParseTreeAndNestedNode(t *testing.T) {
	doc := map[string]interface{}{
		"snapshots": []interface{}{
			map[string]interface{}{
				"s": map[string]interface{}{
					"id": map[string]interface{}{"c": 5, "t": 4},
					"ds": []byte{1, 2},
				},
			},
		},
	}
	raw, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tree, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	snaps, err := Snapshots(tree)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshots len=%d want 1", len(snaps))
	}

	c, ok := Uint(NestedNode(snaps[0], "s", "id", "c"))
	if !ok || c != 5 {
		t.Fatalf("s.id.c = %d ok=%v, want 5", c, ok)
	}
	ds, ok := Data(NestedNode(snaps[0], "s", "ds"))
	if !ok || len(ds) != 2 {
		t.Fatalf("s.ds = %v ok=%v", ds, ok)
	}
	if n := NestedNode(snaps[0], "s", "missing", "deeper"); n != nil {
		t.Fatalf("missing path = %v, want nil", n)
	}
}
