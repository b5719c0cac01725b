package world

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SaveInterval is how often RunPeriodicSave checks the dirty flag (§4.10).
const SaveInterval = 120 * time.Second

// RunPeriodicSave wakes every SaveInterval and saves w to dir if it has been
// marked dirty since the last save. On ctx cancellation it performs one
// final, unconditional save before returning (§4.10). onSave, if
// non-nil, is invoked after each successful save (for metrics).
func RunPeriodicSave(ctx context.Context, dir string, w *World, log *slog.Logger, onSave func()) {
	ticker := time.NewTicker(SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := Save(dir, w); err != nil {
				log.Error("final world save", "err", err)
				return
			}
			if onSave != nil {
				onSave()
			}
			return
		case <-ticker.C:
			if !w.Dirty() {
				continue
			}
			if err := Save(dir, w); err != nil {
				log.Error("periodic world save", "err", err)
				continue
			}
			if onSave != nil {
				onSave()
			}
		}
	}
}

// mapFileName is the persisted world's file name inside the data directory
// (§4.10: "<data>/mapdata").
const mapFileName = "mapdata"

// mapFileMagic guards against loading a file from an incompatible layout.
const mapFileMagic uint32 = 0x424c4b31 // "BLK1"

// Load reads a previously saved world from <dir>/mapdata. It returns
// os.ErrNotExist (wrapped) if no save file exists yet, so callers can fall
// back to Generate.
func Load(dir string) (*World, error) {
	path := filepath.Join(dir, mapFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("world: read magic: %w", err)
	}
	if magic != mapFileMagic {
		return nil, fmt.Errorf("world: %s: bad magic %#x", path, magic)
	}

	var dims [3]int16
	if err := binary.Read(f, binary.BigEndian, &dims); err != nil {
		return nil, fmt.Errorf("world: read dimensions: %w", err)
	}

	var spawn [3]int16
	if err := binary.Read(f, binary.BigEndian, &spawn); err != nil {
		return nil, fmt.Errorf("world: read spawn: %w", err)
	}

	var gridLen uint32
	if err := binary.Read(f, binary.BigEndian, &gridLen); err != nil {
		return nil, fmt.Errorf("world: read grid length: %w", err)
	}

	grid := make([]byte, gridLen)
	if _, err := io.ReadFull(f, grid); err != nil {
		return nil, fmt.Errorf("world: read grid: %w", err)
	}

	return &World{
		X:     dims[0],
		Y:     dims[1],
		Z:     dims[2],
		Spawn: Point{X: spawn[0], Y: spawn[1], Z: spawn[2]},
		grid:  grid,
	}, nil
}

// Save atomically writes the world to <dir>/mapdata: a temp file is written
// in full and renamed into place, so a crash mid-write never corrupts the
// previous save.
func Save(dir string, w *World) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("world: mkdir %s: %w", dir, err)
	}

	x, y, z, spawn, grid := w.snapshot()
	path := filepath.Join(dir, mapFileName)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("world: create %s: %w", tmp, err)
	}
	defer os.Remove(tmp)

	write := func(v any) error { return binary.Write(f, binary.BigEndian, v) }
	if err := write(mapFileMagic); err != nil {
		return closeAndWrap(f, "write magic", err)
	}
	if err := write([3]int16{x, y, z}); err != nil {
		return closeAndWrap(f, "write dimensions", err)
	}
	if err := write([3]int16{spawn.X, spawn.Y, spawn.Z}); err != nil {
		return closeAndWrap(f, "write spawn", err)
	}
	if err := write(uint32(len(grid))); err != nil {
		return closeAndWrap(f, "write grid length", err)
	}
	if _, err := f.Write(grid); err != nil {
		return closeAndWrap(f, "write grid", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("world: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("world: rename %s to %s: %w", tmp, path, err)
	}

	w.ClearDirty()
	return nil
}

func closeAndWrap(f *os.File, step string, err error) error {
	f.Close()
	return fmt.Errorf("world: %s: %w", step, err)
}
