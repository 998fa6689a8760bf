package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"xyian-bot/internal/knowledge"
)

// CollectFragments decodes a JSON document of arbitrary shape and returns
// every leaf string as a candidate fragment. Objects and arrays are walked
// depth-first; each fragment carries a context label built by joining
// ancestor keys (array elements contribute their index) onto the source
// label.
func CollectFragments(data []byte, label string) ([]knowledge.Fragment, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse source %s: %w", label, err)
	}

	var fragments []knowledge.Fragment
	walkValue(root, label, &fragments)
	return fragments, nil
}

// walkValue is a single structural recursion over the three JSON shapes
// that can hold text: a string leaf, a sequence, or a keyed mapping.
// Numbers, booleans and nulls carry no candidate text and are ignored.
func walkValue(v any, label string, out *[]knowledge.Fragment) {
	switch val := v.(type) {
	case string:
		*out = append(*out, knowledge.Fragment{Text: val, Label: label})
	case []any:
		for i, item := range val {
			walkValue(item, label+"_"+strconv.Itoa(i), out)
		}
	case map[string]any:
		// Deterministic walk order so context labels and dedup first-wins
		// are reproducible across runs.
		for _, key := range sortedKeys(val) {
			walkValue(val[key], label+"_"+key, out)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
