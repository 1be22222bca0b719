package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"spikenet/internal/nn"
	"spikenet/internal/stats"
	"spikenet/internal/storage"
	"spikenet/pkg/spikenet"
)

const defaultDBPath = "spikenet.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "layers":
		return runLayers(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	scapeName := fs.String("scape", "xor", "scape name: xor|mirror|beacon")
	topology := fs.String("topology", "", "comma separated layer sizes (default: scape inputs, inputs+outputs, outputs)")
	signal := fs.String("signal", "binary", "signal type: binary|numeric")
	method := fs.String("method", "recursive_learning", "learning method: recursive_learning|reinforcement|cooperation|backprop")
	activation := fs.String("activation", "step", "membrane transition: "+strings.Join(nn.ListActivationKinds(), "|"))
	episodes := fs.Int("episodes", 20, "episode count")
	steps := fs.Int("steps", 16, "steps per episode")
	seed := fs.Int64("seed", 1, "rng seed")
	preserveContext := fs.Bool("preserve-context", false, "keep membrane state between training cycles")
	width := fs.Int("width", 2, "pattern width for the mirror scape")
	power := fs.Float64("power", 10, "reward magnitude for the beacon scape")
	artifactsDir := fs.String("artifacts-dir", "", "write run artifacts under this directory")
	logLevel := fs.String("log-level", "warn", "network event log level: debug|info|warn|error")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		layers, err := parseTopology(*topology)
		if err != nil {
			return err
		}
		req = spikenet.RunRequest{
			Scape:           *scapeName,
			Topology:        layers,
			Signal:          *signal,
			Method:          *method,
			Activation:      *activation,
			Episodes:        *episodes,
			Steps:           *steps,
			Seed:            *seed,
			PreserveContext: *preserveContext,
			Width:           *width,
			Power:           *power,
			ArtifactsDir:    *artifactsDir,
		}
	} else {
		err := overrideFromFlags(&req, setFlags, map[string]any{
			"scape":            *scapeName,
			"topology":         *topology,
			"signal":           *signal,
			"method":           *method,
			"activation":       *activation,
			"episodes":         *episodes,
			"steps":            *steps,
			"seed":             *seed,
			"preserve-context": *preserveContext,
			"width":            *width,
			"power":            *power,
			"artifacts-dir":    *artifactsDir,
		})
		if err != nil {
			return err
		}
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return err
	}
	client, err := spikenet.New(spikenet.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(summary)
	}

	fmt.Printf("run_id=%s scape=%s topology=%v method=%s signal=%s\n",
		summary.RunID, summary.Run.Scape, summary.Run.Topology, summary.Run.Method, summary.Run.Signal)
	fmt.Printf("episodes=%d best=%.4f final=%.4f mean=%.4f stddev=%.4f improvement=%.4f\n",
		summary.Run.Episodes, summary.Run.BestFitness, summary.Run.FinalFitness,
		summary.Run.MeanFitness, summary.Run.StdDevFitness, summary.Improvement)
	fmt.Printf("final_spikes=%v\n", summary.FinalSpikes)
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts=%s\n", summary.ArtifactsDir)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	scapeName := fs.String("scape", "", "only list runs of this scape")
	jsonOut := fs.Bool("json", false, "emit runs as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := spikenet.New(spikenet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, spikenet.RunsRequest{Limit: *limit, Scape: *scapeName})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("run_id=%s started_at=%s scape=%s method=%s seed=%d episodes=%d best=%.4f final=%.4f\n",
			r.ID, r.StartedAtUTC, r.Scape, r.Method, r.Seed, r.Episodes, r.BestFitness, r.FinalFitness)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 0, "max episodes to print (<=0 for all)")
	plotPath := fs.String("plot", "", "render the fitness history to this image path (.png|.svg|.pdf)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := spikenet.New(spikenet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, spikenet.HistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *plotPath != "" {
		name := *runID
		if name == "" {
			name = "latest"
		}
		if err := stats.WriteFitnessPlot(*plotPath, "fitness", []stats.FitnessSeries{{Name: name, History: history}}); err != nil {
			return err
		}
		fmt.Printf("plot=%s\n", *plotPath)
	}
	if *jsonOut {
		return writeJSON(history)
	}

	for i, fitness := range history {
		fmt.Printf("episode=%d fitness=%.6f\n", i+1, fitness)
	}
	return nil
}

func runLayers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("layers", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show layer stats for the most recent run")
	jsonOut := fs.Bool("json", false, "emit layer stats as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("layers requires --run-id or --latest")
	}

	client, err := spikenet.New(spikenet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	layers, err := client.LayerStats(ctx, spikenet.HistoryRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(layers)
	}
	for _, l := range layers {
		fmt.Printf("layer=%d neurons=%d connections=%d mean_weight=%.4f min=%.4f max=%.4f norm=%.4f mean_stability=%.4f spike_rate=%.4f mean_vm=%.4f\n",
			l.Layer, l.Neurons, l.Connections, l.MeanWeight, l.MinWeight, l.MaxWeight,
			l.WeightNorm, l.MeanStability, l.SpikeRate, l.MeanVM)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	artifactsDir := fs.String("artifacts-dir", "", "directory the run wrote its artifacts to")
	outDir := fs.String("out", "exports", "export destination directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := spikenet.New(spikenet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	dir, err := client.Export(ctx, spikenet.ExportRequest{
		RunID:        *runID,
		Latest:       *latest,
		ArtifactsDir: *artifactsDir,
		OutDir:       *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run artifacts to %s\n", dir)
	return nil
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level: %s", name)
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: spikectl <run|runs|fitness|layers|export> [flags]", msg)
}
