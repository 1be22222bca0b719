package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"spikenet/internal/model"
)

// RunArtifacts is the on-disk export of one training run.
type RunArtifacts struct {
	Run            model.RunRecord    `json:"run"`
	FitnessHistory []float64          `json:"fitness_history"`
	Summary        RewardSummary      `json:"summary"`
	Layers         []model.LayerStats `json:"layers"`
}

const (
	runFile         = "run.json"
	historyFile     = "fitness_history.json"
	seriesFile      = "fitness_series.csv"
	layerStatsFile  = "layer_stats.json"
	seriesPrecision = 6
)

var artifactFiles = []string{runFile, historyFile, seriesFile, layerStatsFile}

// WriteRunArtifacts writes the run under baseDir/<run id> and returns that
// directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	history := struct {
		History []float64     `json:"history"`
		Summary RewardSummary `json:"summary"`
	}{artifacts.FitnessHistory, artifacts.Summary}

	for name, value := range map[string]any{
		runFile:        artifacts.Run,
		historyFile:    history,
		layerStatsFile: artifacts.Layers,
	} {
		if err := writeJSON(filepath.Join(runDir, name), value); err != nil {
			return "", err
		}
	}
	if err := writeFitnessSeries(filepath.Join(runDir, seriesFile), artifacts.FitnessHistory); err != nil {
		return "", err
	}
	return runDir, nil
}

// ExportRunArtifacts copies the artifact files of runID from baseDir into
// outDir/<run id>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}
	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("artifacts for run %s: %w", runID, err)
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}
	for _, name := range artifactFiles {
		data, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dst, name), data, 0o644); err != nil {
			return "", err
		}
	}
	return dst, nil
}

// writeFitnessSeries writes one row per episode with the running mean and
// the best fitness seen so far.
func writeFitnessSeries(path string, history []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"episode", "fitness", "running_mean", "best_so_far"}); err != nil {
		return err
	}
	sum, best := 0.0, math.Inf(-1)
	for i, fitness := range history {
		sum += fitness
		best = math.Max(best, fitness)
		row := []string{
			strconv.Itoa(i + 1),
			formatFloat(fitness),
			formatFloat(sum / float64(i+1)),
			formatFloat(best),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', seriesPrecision, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
