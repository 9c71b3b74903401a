package entitysync

import "encoding/json"

// shallowMerge overlays patch keys onto doc's top-level JSON fields. Only
// the named keys change; a nested object in the patch replaces the whole
// field rather than merging into it.
func shallowMerge[T any](doc T, patch map[string]any) (T, error) {
	var zero T

	raw, err := json.Marshal(doc)
	if err != nil {
		return zero, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, err
	}
	for k, v := range patch {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return zero, err
	}
	return next, nil
}
