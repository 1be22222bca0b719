package model

// TimestampLayout is RFC 3339 with a fixed nine-digit fraction, so recorded
// timestamps order the same as text and as time.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarises one training run of a network against a scape.
type RunRecord struct {
	VersionedRecord
	ID              string  `json:"id"`
	Scape           string  `json:"scape"`
	Topology        []int   `json:"topology"`
	Signal          string  `json:"signal"`
	Method          string  `json:"method"`
	Seed            int64   `json:"seed"`
	Episodes        int     `json:"episodes"`
	StepsPerEpisode int     `json:"steps_per_episode"`
	BestFitness     float64 `json:"best_fitness"`
	FinalFitness    float64 `json:"final_fitness"`
	MeanFitness     float64 `json:"mean_fitness"`
	StdDevFitness   float64 `json:"stddev_fitness"`
	StartedAtUTC    string  `json:"started_at_utc"`
	CompletedAtUTC  string  `json:"completed_at_utc"`
}

// LayerStats is a snapshot of one layer's connection and activity state at
// the end of a run.
type LayerStats struct {
	VersionedRecord
	Layer         int     `json:"layer"`
	Neurons       int     `json:"neurons"`
	Connections   int     `json:"connections"`
	MeanWeight    float64 `json:"mean_weight"`
	MinWeight     float64 `json:"min_weight"`
	MaxWeight     float64 `json:"max_weight"`
	WeightNorm    float64 `json:"weight_norm"`
	MeanStability float64 `json:"mean_stability"`
	SpikeRate     float64 `json:"spike_rate"`
	MeanVM        float64 `json:"mean_vm"`
}
