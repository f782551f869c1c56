package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/s2ungeda/kac/internal/domain"
)

func TestSnapshot_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_test")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	var tickers [4]domain.Ticker
	tickers[domain.Upbit] = domain.NewTicker(domain.Upbit, "BTC", 75000000, 74990000, 75010000, 10, 1000)
	var books [4]domain.OrderBook
	fx := domain.FxRate{Rate: 1350.5}

	snap := CreateSnapshot(100, tickers, books, fx)

	if err := sm.Save(snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded == nil {
		t.Fatal("Expected snapshot, got nil")
	}

	if loaded.Seq != 100 {
		t.Errorf("Expected seq 100, got %d", loaded.Seq)
	}

	if loaded.Tickers[domain.Upbit].Symbol() != "BTC" || loaded.Tickers[domain.Upbit].LastPrice != 75000000 {
		t.Errorf("Ticker mismatch: got %+v", loaded.Tickers[domain.Upbit])
	}

	if loaded.FxRate.Rate != 1350.5 {
		t.Errorf("FX rate mismatch: got %v", loaded.FxRate)
	}
}

func TestSnapshot_LoadLatest_MultipleSnapshots(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_test2")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	for _, seq := range []uint64{10, 50, 30} {
		snap := &Snapshot{Seq: seq, TsUnix: int64(seq)}
		if err := sm.Save(snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded.Seq != 50 {
		t.Errorf("Expected latest seq 50, got %d", loaded.Seq)
	}
}

func TestSnapshot_LoadLatest_NoSnapshots(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_empty")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded != nil {
		t.Errorf("Expected nil for empty dir, got %v", loaded)
	}
}

func TestSnapshot_Cleanup(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_cleanup")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	for seq := uint64(1); seq <= 5; seq++ {
		snap := &Snapshot{Seq: seq, TsUnix: int64(seq)}
		if err := sm.Save(snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if err := sm.Cleanup(2); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("Expected 2 snapshots after cleanup, got %d", len(entries))
	}

	loaded, _ := sm.LoadLatest()
	if loaded.Seq != 5 {
		t.Errorf("Expected seq 5 to remain, got %d", loaded.Seq)
	}
}
