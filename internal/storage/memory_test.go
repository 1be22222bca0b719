package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spikenet/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	later := model.RunRecord{VersionedRecord: Versioned(), ID: "b", Scape: "xor", StartedAtUTC: "2026-01-02T00:00:00Z", Topology: []int{2, 1}}
	earlier := model.RunRecord{VersionedRecord: Versioned(), ID: "a", Scape: "mirror", StartedAtUTC: "2026-01-01T00:00:00Z"}
	for _, run := range []model.RunRecord{later, earlier} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	got, ok, err := store.GetRun(ctx, "b")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	got.Topology[0] = 99
	again, _, _ := store.GetRun(ctx, "b")
	if again.Topology[0] != 2 {
		t.Fatal("store returned an aliased topology")
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "a" || runs[1].ID != "b" {
		t.Fatalf("unexpected run order: %+v", runs)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("expected missing run")
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{0.1, 0.2, 0.3}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	input[0] = 42
	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted history")
	}
	if len(output) != 3 || output[0] != 0.1 {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStoreLayerStatsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.LayerStats{
		{VersionedRecord: Versioned(), Layer: 0, Neurons: 2},
		{VersionedRecord: Versioned(), Layer: 1, Neurons: 1, Connections: 2, MeanWeight: 1.5},
	}
	if err := store.SaveLayerStats(ctx, "run-1", input); err != nil {
		t.Fatalf("save layer stats: %v", err)
	}
	output, ok, err := store.GetLayerStats(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get layer stats: ok=%v err=%v", ok, err)
	}
	if len(output) != 2 || output[1].MeanWeight != 1.5 {
		t.Fatalf("unexpected layer stats: %+v", output)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveRun(context.Background(), model.RunRecord{ID: "x"})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestMemoryStoreOrdersRunsByStartTime(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	runs := []model.RunRecord{
		{VersionedRecord: Versioned(), ID: "b-later", StartedAtUTC: "2026-01-01T00:00:05.5Z"},
		{VersionedRecord: Versioned(), ID: "a-earlier", StartedAtUTC: "2026-01-01T00:00:05Z"},
		{VersionedRecord: Versioned(), ID: "c-fixed", StartedAtUTC: "2026-01-01T00:00:05.600000000Z"},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}
	listed, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	var ids []string
	for _, run := range listed {
		ids = append(ids, run.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a-earlier", "b-later", "c-fixed"}) {
		t.Fatalf("unexpected run order: %v", ids)
	}
}

func TestTimestampLayoutSortsAsText(t *testing.T) {
	whole := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC).Format(model.TimestampLayout)
	half := time.Date(2026, 1, 1, 0, 0, 5, 500_000_000, time.UTC).Format(model.TimestampLayout)
	if !(whole < half) {
		t.Fatalf("expected %s < %s", whole, half)
	}
}
