package api

import (
	"encoding/json"
	"testing"
)

func TestSocialMapUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{"native object", `{"linkedin":"https://linkedin.com/in/jane"}`, map[string]string{"linkedin": "https://linkedin.com/in/jane"}},
		{"double-encoded string", `"{\"linkedin\":\"https://linkedin.com/in/jane\"}"`, map[string]string{"linkedin": "https://linkedin.com/in/jane"}},
		{"empty object", `{}`, map[string]string{}},
		{"double-encoded empty object", `"{}"`, map[string]string{}},
		{"empty string", `""`, map[string]string{}},
		{"null", `null`, map[string]string{}},
		{"garbage", `42`, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m SocialMap
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatalf("unmarshal should never fail, got %v", err)
			}
			if m == nil {
				t.Fatal("map must never be nil")
			}
			if len(m) != len(tt.want) {
				t.Fatalf("got %v, want %v", m, tt.want)
			}
			for k, v := range tt.want {
				if m[k] != v {
					t.Errorf("m[%q] = %q, want %q", k, m[k], v)
				}
			}
		})
	}
}

func TestSocialMapInsideProfile(t *testing.T) {
	var p Profile
	raw := `{"user_id":"u1","name":"Jane","socials":"{\"twitter\":\"https://twitter.com/jane\"}"}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	if p.Socials["twitter"] != "https://twitter.com/jane" {
		t.Errorf("socials = %v", p.Socials)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      Error
		notFound bool
		conflict bool
	}{
		{"typed not found", Error{Code: 404, Type: "document_not_found"}, true, false},
		{"untyped 404", Error{Code: 404}, true, false},
		{"typed conflict", Error{Code: 409, Type: "document_already_exists"}, false, true},
		{"untyped 409", Error{Code: 409}, false, true},
		{"validation", Error{Code: 400, Type: "validation_failed"}, false, false},
		{"server error", Error{Code: 500}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.NotFound(); got != tt.notFound {
				t.Errorf("NotFound() = %v, want %v", got, tt.notFound)
			}
			if got := tt.err.Conflict(); got != tt.conflict {
				t.Errorf("Conflict() = %v, want %v", got, tt.conflict)
			}
		})
	}
}
