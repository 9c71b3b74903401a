package dto

import (
	"encoding/json"
	"testing"
)

func TestOptionalTriState(t *testing.T) {
	type patch struct {
		AvatarFileID Optional[string] `json:"avatar_file_id"`
	}

	t.Run("absent field", func(t *testing.T) {
		var p patch
		if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
			t.Fatal(err)
		}
		if p.AvatarFileID.Set {
			t.Error("absent field should not be marked set")
		}
	})

	t.Run("explicit null clears", func(t *testing.T) {
		var p patch
		if err := json.Unmarshal([]byte(`{"avatar_file_id":null}`), &p); err != nil {
			t.Fatal(err)
		}
		if !p.AvatarFileID.Set {
			t.Error("null should be marked set")
		}
		if p.AvatarFileID.Value != nil {
			t.Errorf("null should carry a nil value, got %v", *p.AvatarFileID.Value)
		}
	})

	t.Run("value", func(t *testing.T) {
		var p patch
		if err := json.Unmarshal([]byte(`{"avatar_file_id":"abc"}`), &p); err != nil {
			t.Fatal(err)
		}
		if !p.AvatarFileID.Set || p.AvatarFileID.Value == nil || *p.AvatarFileID.Value != "abc" {
			t.Errorf("got %+v", p.AvatarFileID)
		}
	})
}
