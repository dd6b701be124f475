// Package fingerprint computes deterministic cache keys for generation
// requests. Two requests that differ only in whitespace or in the order
// of list-valued fields produce the same fingerprint; any semantic
// difference in stage, model, or inputs produces a different one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Compute returns the hex-encoded SHA-256 fingerprint of a generation
// request. The digest covers the full normalized input set; it is never
// truncated, so collisions across materially different inputs are not a
// practical concern.
func Compute(stage, model string, inputs map[string]interface{}) (string, error) {
	envelope := map[string]interface{}{
		"stage":  stage,
		"model":  model,
		"inputs": Normalize(inputs),
	}

	// json.Marshal sorts map keys, which gives us a canonical encoding.
	canonical, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize inputs: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Normalize returns a copy of inputs with insignificant variation
// removed: strings have surrounding and repeated whitespace collapsed,
// lists of strings are sorted, and nested maps are normalized
// recursively. Non-string scalars pass through unchanged.
func Normalize(inputs map[string]interface{}) map[string]interface{} {
	if inputs == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(inputs))
	for k, v := range inputs {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return normalizeString(val)
	case []string:
		return normalizeStringSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	case map[string]interface{}:
		return Normalize(val)
	default:
		return v
	}
}

// normalizeString trims the string and collapses internal whitespace
// runs to single spaces.
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeStringSlice(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(normalizeString(s))
	}
	sort.Strings(out)
	return out
}

// normalizeSlice normalizes each element. If every element is a string
// the slice is treated as a tag list: lowercased and sorted, so tag
// order never affects the fingerprint.
func normalizeSlice(in []interface{}) interface{} {
	allStrings := true
	for _, v := range in {
		if _, ok := v.(string); !ok {
			allStrings = false
			break
		}
	}

	if allStrings {
		tags := make([]string, len(in))
		for i, v := range in {
			tags[i] = v.(string)
		}
		return normalizeStringSlice(tags)
	}

	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = normalizeValue(v)
	}
	return out
}
