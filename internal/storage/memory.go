package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"spikenet/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	history     map[string][]float64
	layers      map[string][]model.LayerStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]float64)
	s.layers = make(map[string][]model.LayerStats)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run.Topology = append([]int(nil), run.Topology...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Topology = append([]int(nil), run.Topology...)
	return run, true, nil
}

// ListRuns returns every run ordered by start time, then ID.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.Topology = append([]int(nil), run.Topology...)
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	copied := append([]float64(nil), history...)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := append([]float64(nil), history...)
	return copied, true, nil
}

func (s *MemoryStore) SaveLayerStats(_ context.Context, runID string, layers []model.LayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	copied := make([]model.LayerStats, len(layers))
	copy(copied, layers)
	s.layers[runID] = copied
	return nil
}

func (s *MemoryStore) GetLayerStats(_ context.Context, runID string) ([]model.LayerStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layers, ok := s.layers[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LayerStats, len(layers))
	copy(copied, layers)
	return copied, true, nil
}

// sortRuns orders runs by start time, then id. Start times that do not
// parse compare as text.
func sortRuns(runs []model.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, errA := time.Parse(time.RFC3339Nano, runs[i].StartedAtUTC)
		b, errB := time.Parse(time.RFC3339Nano, runs[j].StartedAtUTC)
		if errA == nil && errB == nil {
			if !a.Equal(b) {
				return a.Before(b)
			}
		} else if runs[i].StartedAtUTC != runs[j].StartedAtUTC {
			return runs[i].StartedAtUTC < runs[j].StartedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
}
