package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// DecodeSocials decodes a socials column defensively: older documents stored
// the map as a JSON-encoded string rather than a native object, and both
// forms must decode to the same map. Anything unreadable decodes to an empty
// map, never nil.
func DecodeSocials(raw datatypes.JSON) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}

	b := []byte(raw)
	var nested string
	if err := json.Unmarshal(b, &nested); err == nil {
		b = []byte(nested)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]string{}
	}
	if out == nil {
		return map[string]string{}
	}
	return out
}

// EncodeSocials marshals a socials map for storage; nil becomes {}.
func EncodeSocials(m map[string]string) datatypes.JSON {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// DecodeVisibility decodes a field-visibility column with the same
// tolerance as DecodeSocials.
func DecodeVisibility(raw datatypes.JSON) map[string]bool {
	out := map[string]bool{}
	if len(raw) == 0 {
		return out
	}

	b := []byte(raw)
	var nested string
	if err := json.Unmarshal(b, &nested); err == nil {
		b = []byte(nested)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]bool{}
	}
	if out == nil {
		return map[string]bool{}
	}
	return out
}

// EncodeVisibility marshals a visibility map for storage; nil becomes {}.
func EncodeVisibility(m map[string]bool) datatypes.JSON {
	if m == nil {
		m = map[string]bool{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
