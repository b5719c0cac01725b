package world

import (
	"errors"
	"os"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w := Generate(12, 12, 12, testGenHeight, 99)
	w.SetBlock(3, 3, 3, GoldOre)

	if err := Save(dir, w); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if w.Dirty() {
		t.Error("world should not be dirty after Save")
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wx, wy, wz := w.Dimensions()
	lx, ly, lz := loaded.Dimensions()
	if wx != lx || wy != ly || wz != lz {
		t.Errorf("loaded dimensions (%d,%d,%d), want (%d,%d,%d)", lx, ly, lz, wx, wy, wz)
	}
	if loaded.Spawn != w.Spawn {
		t.Errorf("loaded spawn %+v, want %+v", loaded.Spawn, w.Spawn)
	}
	if got := loaded.GetBlock(3, 3, 3); got != GoldOre {
		t.Errorf("loaded GetBlock(3,3,3) = %d, want GoldOre", got)
	}
}

func TestLoadMissingFileReturnsNotExist(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapping os.ErrNotExist", err)
	}
}

func TestSaveCreatesDataDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	w := New(4, 4, 4, Point{})
	if err := Save(dir, w); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}
}
