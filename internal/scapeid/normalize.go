package scapeid

import "strings"

// Normalize maps a scape name or one of its aliases onto the registered
// scape name. Unknown names are returned lower-cased and dash-separated.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	for _, candidate := range candidates(normalized) {
		if canonical, ok := canonicalName(candidate); ok {
			return canonical
		}
	}
	return normalized
}

// candidates strips an optional "scape" prefix and "sim" suffix.
func candidates(normalized string) []string {
	out := []string{normalized}
	stripped := strings.TrimPrefix(normalized, "scape-")
	stripped = strings.TrimSuffix(stripped, "-sim")
	if stripped != normalized && stripped != "" {
		out = append(out, stripped)
	}
	return out
}

func canonicalName(alias string) (string, bool) {
	switch strings.ReplaceAll(alias, "-", "") {
	case "xor":
		return "xor", true
	case "mirror", "echo", "identity":
		return "mirror", true
	case "beacon", "beaconfollow", "phototaxis":
		return "beacon", true
	default:
		return "", false
	}
}
