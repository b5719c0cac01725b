package world

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"

	"github.com/StoreStation/blockworld/internal/protocol"
)

// chunkSize is the maximum payload a single LevelDataChunk packet carries
// (§3/§4.8); LevelDataChunk.Encode pads short chunks to this length.
const chunkSize = 1024

// Stream compresses a world's grid for the level transfer sequence: a gzip
// "fast" (level 1) stream of a 4-byte big-endian volume header followed by
// the raw grid bytes, split into fixed 1024-byte LevelDataChunk packets.
// Each returned chunk's PercentComplete is floor(100 * bytesEmitted / total).
func Stream(w *World) ([]protocol.LevelDataChunk, error) {
	x, y, z, _, grid := w.snapshot()

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("world: new gzip writer: %w", err)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(int(x)*int(y)*int(z)))
	if _, err := gz.Write(header[:]); err != nil {
		return nil, fmt.Errorf("world: write level header: %w", err)
	}
	if _, err := gz.Write(grid); err != nil {
		return nil, fmt.Errorf("world: write level grid: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("world: close gzip writer: %w", err)
	}

	compressed := buf.Bytes()
	total := len(compressed)
	if total == 0 {
		return nil, nil
	}

	var chunks []protocol.LevelDataChunk
	emitted := 0
	for emitted < total {
		end := emitted + chunkSize
		if end > total {
			end = total
		}
		chunk := compressed[emitted:end]
		emitted = end

		chunks = append(chunks, protocol.LevelDataChunk{
			ChunkLength:     int16(len(chunk)),
			ChunkData:       chunk,
			PercentComplete: uint8(100 * emitted / total),
		})
	}
	return chunks, nil
}
