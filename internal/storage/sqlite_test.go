//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"spikenet/internal/model"
)

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t)

	runs := []model.RunRecord{
		{VersionedRecord: Versioned(), ID: "r2", Scape: "xor", Topology: []int{2, 3, 1}, StartedAtUTC: "2026-03-02T00:00:00Z"},
		{VersionedRecord: Versioned(), ID: "r1", Scape: "beacon", Topology: []int{1, 1}, StartedAtUTC: "2026-03-01T00:00:00Z"},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, "r2")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected run r2")
	}
	if !reflect.DeepEqual(loaded, runs[0]) {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "r1" || listed[1].ID != "r2" {
		t.Fatalf("unexpected run order: %+v", listed)
	}

	runs[0].BestFitness = 1
	if err := store.SaveRun(ctx, runs[0]); err != nil {
		t.Fatalf("upsert run: %v", err)
	}
	loaded, _, _ = store.GetRun(ctx, "r2")
	if loaded.BestFitness != 1 {
		t.Fatalf("upsert not applied: %+v", loaded)
	}
}

func TestSQLiteStoreHistoryAndLayerStats(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t)

	if err := store.SaveFitnessHistory(ctx, "r1", []float64{0.25, 0.5}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history, ok, err := store.GetFitnessHistory(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(history, []float64{0.25, 0.5}) {
		t.Fatalf("unexpected history: %v", history)
	}

	layers := []model.LayerStats{{VersionedRecord: Versioned(), Layer: 1, Neurons: 3, Connections: 6, WeightNorm: 4.5}}
	if err := store.SaveLayerStats(ctx, "r1", layers); err != nil {
		t.Fatalf("save layer stats: %v", err)
	}
	loaded, ok, err := store.GetLayerStats(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("get layer stats: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, layers) {
		t.Fatalf("unexpected layer stats: %+v", loaded)
	}

	if _, ok, err := store.GetLayerStats(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing layer stats, ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "spikenet.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.SaveRun(ctx, model.RunRecord{VersionedRecord: Versioned(), ID: "keep", StartedAtUTC: "2026-01-01T00:00:00Z"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})
	if _, ok, err := second.GetRun(ctx, "keep"); err != nil || !ok {
		t.Fatalf("run lost after reopen: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "unused.db"))
	if _, err := store.ListRuns(context.Background()); err == nil {
		t.Fatal("expected error before init")
	}
}

func openSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "spikenet.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStoreOrdersRunsByStartTime(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t)
	for _, run := range []model.RunRecord{
		{VersionedRecord: Versioned(), ID: "b-later", StartedAtUTC: "2026-01-01T00:00:05.5Z"},
		{VersionedRecord: Versioned(), ID: "a-earlier", StartedAtUTC: "2026-01-01T00:00:05Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}
	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[1].ID != "b-later" {
		t.Fatalf("latest run must be b-later: %+v", listed)
	}
}
