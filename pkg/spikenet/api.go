package spikenet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"spikenet/internal/agent"
	spikeio "spikenet/internal/io"
	"spikenet/internal/model"
	"spikenet/internal/nn"
	"spikenet/internal/scape"
	"spikenet/internal/scapeid"
	"spikenet/internal/stats"
	"spikenet/internal/storage"
)

const (
	defaultDBPath   = "spikenet.db"
	defaultEpisodes = 20
	defaultSteps    = 16
	defaultRunLimit = 20
)

type Options struct {
	StoreKind string
	DBPath    string
	// Logger receives the network's coercion and learning events. Nil uses
	// slog.Default.
	Logger *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	Scape    string
	Topology []int
	Signal   string
	Method   string
	// Activation names the membrane transition; empty selects step.
	Activation string
	Episodes   int
	Steps      int
	Seed       int64
	// PreserveContext keeps membrane state between training cycles.
	PreserveContext bool
	// Width and Power parameterize the mirror and beacon scapes.
	Width int
	Power float64
	// ArtifactsDir, when set, receives run.json, the fitness series and the
	// final layer statistics under <ArtifactsDir>/<run id>.
	ArtifactsDir string
}

type RunSummary struct {
	RunID          string
	Run            model.RunRecord
	FitnessHistory []float64
	Improvement    float64
	Layers         []model.LayerStats
	// FinalSpikes reports which output neurons were active on the last step.
	FinalSpikes  []bool
	ArtifactsDir string
}

type RunsRequest struct {
	Limit int
	Scape string
}

// ExportRequest copies the artifacts of one run from ArtifactsDir, where Run
// wrote them, to OutDir.
type ExportRequest struct {
	RunID        string
	Latest       bool
	ArtifactsDir string
	OutDir       string
}

// HistoryRequest selects one run either by id or as the most recent one.
type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) ensureInit(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run trains a fresh network against a scape for the requested number of
// episodes and records the run.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scape == "" {
		req.Scape = "xor"
	}
	if req.Episodes <= 0 {
		req.Episodes = defaultEpisodes
	}
	if req.Steps <= 0 {
		req.Steps = defaultSteps
	}
	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}

	sc, err := scape.New(req.Scape, scape.Options{Width: req.Width, Power: req.Power, Seed: req.Seed})
	if err != nil {
		return RunSummary{}, err
	}
	topology, err := resolveTopology(sc, req.Topology)
	if err != nil {
		return RunSummary{}, err
	}
	signal, err := nn.ParseSignalType(req.Signal)
	if err != nil {
		return RunSummary{}, err
	}
	method, err := nn.ParseLearningMethod(req.Method)
	if err != nil {
		return RunSummary{}, err
	}
	activation, err := nn.ParseActivationKind(req.Activation)
	if err != nil {
		return RunSummary{}, err
	}

	net, err := nn.Build(nn.Config{
		Topology:        topology,
		Signal:          signal,
		Method:          method,
		Activation:      activation,
		PreserveContext: req.PreserveContext,
		Seed:            req.Seed,
		Logger:          c.logger,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	cortex, err := newScapeCortex(runID, sc.Name(), net)
	if err != nil {
		return RunSummary{}, err
	}

	startedAt := time.Now().UTC()
	history := make([]float64, 0, req.Episodes)
	for episode := 0; episode < req.Episodes; episode++ {
		fitness, _, err := sc.Episode(ctx, cortex, req.Steps)
		if err != nil {
			return RunSummary{}, fmt.Errorf("episode %d: %w", episode, err)
		}
		history = append(history, float64(fitness))
	}

	summary := stats.SummarizeRewards(history)
	layers, err := stats.Layers(net)
	if err != nil {
		return RunSummary{}, err
	}
	run := model.RunRecord{
		VersionedRecord: storage.Versioned(),
		ID:              runID,
		Scape:           sc.Name(),
		Topology:        append([]int(nil), topology...),
		Signal:          signal.String(),
		Method:          method.String(),
		Seed:            req.Seed,
		Episodes:        req.Episodes,
		StepsPerEpisode: req.Steps,
		BestFitness:     summary.Max,
		FinalFitness:    summary.Final,
		MeanFitness:     summary.Mean,
		StdDevFitness:   summary.StdDev,
		StartedAtUTC:    startedAt.Format(model.TimestampLayout),
		CompletedAtUTC:  time.Now().UTC().Format(model.TimestampLayout),
	}

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveLayerStats(ctx, runID, layers); err != nil {
		return RunSummary{}, err
	}

	out := RunSummary{
		RunID:          runID,
		Run:            run,
		FitnessHistory: append([]float64(nil), history...),
		Improvement:    summary.Improvement(),
		Layers:         layers,
		FinalSpikes:    net.OutputBools(),
	}
	if req.ArtifactsDir != "" {
		runDir, err := stats.WriteRunArtifacts(req.ArtifactsDir, stats.RunArtifacts{
			Run:            run,
			FitnessHistory: history,
			Summary:        summary,
			Layers:         layers,
		})
		if err != nil {
			return RunSummary{}, err
		}
		out.ArtifactsDir = filepath.Clean(runDir)
	}
	return out, nil
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunLimit
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	scapeName := scapeid.Normalize(req.Scape)
	out := make([]model.RunRecord, 0, len(runs))
	for i := len(runs) - 1; i >= 0 && len(out) < req.Limit; i-- {
		if scapeName != "" && runs[i].Scape != scapeName {
			continue
		}
		out = append(out, runs[i])
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req HistoryRequest) ([]float64, error) {
	runID, err := c.resolveRunID(ctx, req, "fitness history")
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) LayerStats(ctx context.Context, req HistoryRequest) ([]model.LayerStats, error) {
	runID, err := c.resolveRunID(ctx, req, "layer stats")
	if err != nil {
		return nil, err
	}
	layers, ok, err := c.store.GetLayerStats(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("layer stats not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(layers) > req.Limit {
		layers = layers[:req.Limit]
	}
	out := make([]model.LayerStats, len(layers))
	copy(out, layers)
	return out, nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (string, error) {
	if req.ArtifactsDir == "" || req.OutDir == "" {
		return "", errors.New("export requires artifacts dir and out dir")
	}
	runID, err := c.resolveRunID(ctx, HistoryRequest{RunID: req.RunID, Latest: req.Latest}, "export")
	if err != nil {
		return "", err
	}
	dir, err := stats.ExportRunArtifacts(req.ArtifactsDir, runID, req.OutDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}

func (c *Client) resolveRunID(ctx context.Context, req HistoryRequest, what string) (string, error) {
	if req.RunID != "" && req.Latest {
		return "", errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if err := c.ensureInit(ctx); err != nil {
		return "", err
	}
	if !req.Latest {
		if req.RunID == "" {
			return "", fmt.Errorf("%s requires run id or latest", what)
		}
		return req.RunID, nil
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[len(runs)-1].ID, nil
}

// resolveTopology fills in a default single hidden layer and checks the
// outer layers against the scape's shape.
func resolveTopology(sc scape.Scape, topology []int) ([]int, error) {
	inputs, outputs := sc.Shape()
	if len(topology) == 0 {
		return []int{inputs, inputs + outputs, outputs}, nil
	}
	if topology[0] != inputs || topology[len(topology)-1] != outputs {
		return nil, fmt.Errorf("%w: scape %s needs %d inputs and %d outputs, topology is %v",
			nn.ErrInvalidTopology, sc.Name(), inputs, outputs, topology)
	}
	return append([]int(nil), topology...), nil
}

// newScapeCortex attaches the scape's registered sensors and actuators when
// they cover the network's input layer, otherwise the cortex is driven
// through RunStep only.
func newScapeCortex(id, scapeName string, net *nn.Network) (*agent.Cortex, error) {
	sensorIDs := spikeio.ListSensorsForScape(scapeName)
	actuatorIDs := spikeio.ListActuatorsForScape(scapeName)
	if len(sensorIDs) != net.InputSize() {
		return agent.NewCortex(id, net, nil, nil, nil, nil)
	}

	sensors := make(map[string]spikeio.Sensor, len(sensorIDs))
	for _, name := range sensorIDs {
		sensor, err := spikeio.ResolveSensor(name, scapeName)
		if err != nil {
			return nil, err
		}
		sensors[name] = sensor
	}
	actuators := make(map[string]spikeio.Actuator, len(actuatorIDs))
	for _, name := range actuatorIDs {
		actuator, err := spikeio.ResolveActuator(name, scapeName)
		if err != nil {
			return nil, err
		}
		actuators[name] = actuator
	}
	return agent.NewCortex(id, net, sensors, actuators, sensorIDs, actuatorIDs)
}
