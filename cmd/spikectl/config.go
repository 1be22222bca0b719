package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"spikenet/pkg/spikenet"
)

func loadRunRequestFromConfig(path string) (spikenet.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spikenet.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return spikenet.RunRequest{}, err
	}

	var req spikenet.RunRequest
	if v, ok := asString(raw["scape"]); ok {
		req.Scape = v
	}
	if v, ok := asIntSlice(raw["topology"]); ok {
		req.Topology = v
	}
	if v, ok := asString(raw["signal"]); ok {
		req.Signal = v
	}
	if v, ok := asString(raw["method"]); ok {
		req.Method = v
	}
	if v, ok := asString(raw["activation"]); ok {
		req.Activation = v
	}
	if v, ok := asInt(raw["episodes"]); ok {
		req.Episodes = v
	}
	if v, ok := asInt(raw["steps"]); ok {
		req.Steps = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asBool(raw["preserve_context"]); ok {
		req.PreserveContext = v
	}
	if v, ok := asInt(raw["width"]); ok {
		req.Width = v
	}
	if v, ok := asFloat64(raw["power"]); ok {
		req.Power = v
	}
	if v, ok := asString(raw["artifacts_dir"]); ok {
		req.ArtifactsDir = v
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) ([]int, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// parseTopology reads a comma separated layer list such as "2,3,1".
func parseTopology(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid topology %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func overrideFromFlags(req *spikenet.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "scape":
			req.Scape = v.(string)
		case "topology":
			topology, err := parseTopology(v.(string))
			if err != nil {
				return err
			}
			req.Topology = topology
		case "signal":
			req.Signal = v.(string)
		case "method":
			req.Method = v.(string)
		case "activation":
			req.Activation = v.(string)
		case "episodes":
			req.Episodes = v.(int)
		case "steps":
			req.Steps = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "preserve-context":
			req.PreserveContext = v.(bool)
		case "width":
			req.Width = v.(int)
		case "power":
			req.Power = v.(float64)
		case "artifacts-dir":
			req.ArtifactsDir = v.(string)
		}
	}
	if req.Scape == "" {
		req.Scape = "xor"
	}
	return nil
}

func loadOrDefaultRunRequest(configPath string) (spikenet.RunRequest, error) {
	if configPath == "" {
		return spikenet.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return spikenet.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
