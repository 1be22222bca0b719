package scapeid

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"xor":              "xor",
		"XOR":              "xor",
		"xor_sim":          "xor",
		"scape_xor_sim":    "xor",
		" Mirror ":         "mirror",
		"echo":             "mirror",
		"scape_identity":   "mirror",
		"beacon_follow":    "beacon",
		"phototaxis_sim":   "beacon",
		"custom_sim":       "custom-sim",
		"scape_custom_sim": "scape-custom-sim",
		"":                 "",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("normalize(%q)=%q want=%q", in, got, want)
		}
	}
}
