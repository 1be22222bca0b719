package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"spikenet/internal/model"
	"spikenet/internal/nn"
)

func TestSummarizeRewards(t *testing.T) {
	summary := SummarizeRewards([]float64{0.25, 0.5, 0.75, 1})
	if summary.Count != 4 || summary.Min != 0.25 || summary.Max != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if math.Abs(summary.Mean-0.625) > 1e-12 {
		t.Fatalf("unexpected mean: %v", summary.Mean)
	}
	// Sample standard deviation of the four values.
	if math.Abs(summary.StdDev-0.3227486121839514) > 1e-12 {
		t.Fatalf("unexpected stddev: %v", summary.StdDev)
	}
	if summary.Improvement() != 0.75 {
		t.Fatalf("unexpected improvement: %v", summary.Improvement())
	}

	single := SummarizeRewards([]float64{3})
	if single.Mean != 3 || single.StdDev != 0 || single.Final != 3 {
		t.Fatalf("unexpected single summary: %+v", single)
	}
	if empty := SummarizeRewards(nil); empty != (RewardSummary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestLayerWeightsAndStats(t *testing.T) {
	net, err := nn.Build(nn.Config{Topology: []int{2, 1}, Observer: nn.NopObserver{}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sensors := net.Layer(0)
	out := net.Layer(1)[0]
	if err := net.SetWeight(out, sensors[0], 3); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := net.SetWeight(out, sensors[1], -4); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := net.Input([]float64{1, 0}); err != nil {
		t.Fatalf("input: %v", err)
	}
	net.Forward()

	weights, err := LayerWeights(net, 1)
	if err != nil {
		t.Fatalf("layer weights: %v", err)
	}
	if r, c := weights.Dims(); r != 1 || c != 2 {
		t.Fatalf("unexpected dims: %dx%d", r, c)
	}
	if weights.At(0, 0) != 3 || weights.At(0, 1) != -4 {
		t.Fatalf("unexpected weights: %v %v", weights.At(0, 0), weights.At(0, 1))
	}
	if _, err := LayerWeights(net, 0); !errors.Is(err, ErrNoFeedForwardLayer) {
		t.Fatalf("expected ErrNoFeedForwardLayer, got %v", err)
	}

	layers, err := Layers(net)
	if err != nil {
		t.Fatalf("layers: %v", err)
	}
	if len(layers) != 2 {
		t.Fatalf("unexpected layer count: %d", len(layers))
	}
	sensorLayer, outputLayer := layers[0], layers[1]
	if sensorLayer.Neurons != 2 || sensorLayer.Connections != 0 || sensorLayer.SpikeRate != 0.5 {
		t.Fatalf("unexpected sensor layer stats: %+v", sensorLayer)
	}
	if outputLayer.Connections != 2 || outputLayer.MeanWeight != -0.5 || outputLayer.MinWeight != -4 || outputLayer.MaxWeight != 3 {
		t.Fatalf("unexpected output layer stats: %+v", outputLayer)
	}
	if math.Abs(outputLayer.WeightNorm-5) > 1e-12 {
		t.Fatalf("unexpected weight norm: %v", outputLayer.WeightNorm)
	}
	if outputLayer.MeanStability != 1 {
		t.Fatalf("unexpected mean stability: %v", outputLayer.MeanStability)
	}
}

func TestBuildAveragePlot(t *testing.T) {
	lists := [][]float64{{1, 2, 3}, {3, 4}}
	avg := BuildAveragePlot(lists, 1, 1)
	want := []PlotPoint{{Index: 1, Value: 2}, {Index: 2, Value: 3}, {Index: 3, Value: 3}}
	if !reflect.DeepEqual(avg, want) {
		t.Fatalf("unexpected average plot: %+v", avg)
	}
}

func TestWriteFitnessPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	err := WriteFitnessPlot(path, "xor", []FitnessSeries{
		{Name: "run-a", History: []float64{0.25, 0.5, 0.75}},
		{Name: "run-b", History: []float64{0.5, 0.5}},
	})
	if err != nil {
		t.Fatalf("write plot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty plot")
	}
	if err := WriteFitnessPlot(path, "empty", nil); err == nil {
		t.Fatal("expected error without series")
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	history := []float64{0.5, 0.25, 1}
	artifacts := RunArtifacts{
		Run:            model.RunRecord{ID: "run-123", Scape: "xor", Topology: []int{2, 3, 1}},
		FitnessHistory: history,
		Summary:        SummarizeRewards(history),
		Layers:         []model.LayerStats{{Layer: 0, Neurons: 2}},
	}
	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range artifactFiles {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	rows := readCSV(t, filepath.Join(runDir, seriesFile))
	want := [][]string{
		{"episode", "fitness", "running_mean", "best_so_far"},
		{"1", "0.500000", "0.500000", "0.500000"},
		{"2", "0.250000", "0.375000", "0.500000"},
		{"3", "1.000000", "0.583333", "1.000000"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected fitness series:\n%v", rows)
	}

	data, err := os.ReadFile(filepath.Join(runDir, runFile))
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil || run.Scape != "xor" {
		t.Fatalf("unexpected run.json: run=%+v err=%v", run, err)
	}

	exportedDir, err := ExportRunArtifacts(baseDir, "run-123", outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	for _, file := range artifactFiles {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{}); err == nil {
		t.Fatal("expected missing run id error")
	}
	if _, err := ExportRunArtifacts(baseDir, "missing", outDir); err == nil {
		t.Fatal("expected missing artifacts error")
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}
