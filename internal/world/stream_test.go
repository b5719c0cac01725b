package world

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"testing"
)

func TestStreamChunksDecompressToOriginalGrid(t *testing.T) {
	w := New(8, 8, 8, Point{})
	w.SetBlock(1, 1, 1, Stone)
	w.SetBlock(2, 2, 2, Grass)

	chunks, err := Stream(w)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("Stream produced no chunks")
	}

	var compressed bytes.Buffer
	for _, c := range chunks {
		compressed.Write(c.ChunkData[:c.ChunkLength])
	}

	gz, err := gzip.NewReader(&compressed)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer gz.Close()

	var header [4]byte
	if _, err := io.ReadFull(gz, header[:]); err != nil {
		t.Fatalf("read header: %v", err)
	}
	gotVolume := binary.BigEndian.Uint32(header[:])
	x, y, z := w.Dimensions()
	wantVolume := uint32(int(x) * int(y) * int(z))
	if gotVolume != wantVolume {
		t.Errorf("volume header = %d, want %d", gotVolume, wantVolume)
	}

	grid, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read grid: %v", err)
	}
	if len(grid) != int(wantVolume) {
		t.Fatalf("decompressed grid length = %d, want %d", len(grid), wantVolume)
	}
	if grid[int(1)+int(x)*(1+int(z)*1)] != Stone {
		t.Error("decompressed grid missing the Stone block written before streaming")
	}
}

func TestStreamPercentCompleteReachesHundred(t *testing.T) {
	w := New(16, 16, 16, Point{})
	chunks, err := Stream(w)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	last := chunks[len(chunks)-1]
	if last.PercentComplete != 100 {
		t.Errorf("final PercentComplete = %d, want 100", last.PercentComplete)
	}
	for i, c := range chunks {
		if c.PercentComplete > 100 {
			t.Errorf("chunk %d PercentComplete = %d, want <= 100", i, c.PercentComplete)
		}
	}
}

func TestStreamChunkSizeBound(t *testing.T) {
	w := New(32, 32, 32, Point{})
	chunks, err := Stream(w)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	for i, c := range chunks {
		if int(c.ChunkLength) > chunkSize {
			t.Errorf("chunk %d length = %d, want <= %d", i, c.ChunkLength, chunkSize)
		}
	}
}
