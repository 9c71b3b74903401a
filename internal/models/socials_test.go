package models

import (
	"testing"

	"gorm.io/datatypes"
)

func TestDecodeSocials(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{"native object", `{"linkedin":"https://linkedin.com/in/jane"}`, map[string]string{"linkedin": "https://linkedin.com/in/jane"}},
		{"double-encoded string", `"{\"linkedin\":\"https://linkedin.com/in/jane\"}"`, map[string]string{"linkedin": "https://linkedin.com/in/jane"}},
		{"empty object", `{}`, map[string]string{}},
		{"double-encoded empty object", `"{}"`, map[string]string{}},
		{"null", `null`, map[string]string{}},
		{"garbage", `not json`, map[string]string{}},
		{"empty column", ``, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeSocials(datatypes.JSON(tt.raw))
			if got == nil {
				t.Fatal("decode must never return nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestEncodeSocialsNilBecomesEmptyObject(t *testing.T) {
	if got := string(EncodeSocials(nil)); got != "{}" {
		t.Errorf("EncodeSocials(nil) = %q, want {}", got)
	}
}

func TestSocialsRoundTrip(t *testing.T) {
	in := map[string]string{"twitter": "https://twitter.com/jane", "website": "https://jane.dev"}
	got := DecodeSocials(EncodeSocials(in))
	if len(got) != len(in) || got["twitter"] != in["twitter"] || got["website"] != in["website"] {
		t.Errorf("round trip mismatch: %v", got)
	}
}

func TestDecodeVisibility(t *testing.T) {
	got := DecodeVisibility(datatypes.JSON(`{"name":true,"phone":false}`))
	if !got["name"] || got["phone"] {
		t.Errorf("got %v", got)
	}
	if DecodeVisibility(datatypes.JSON(``)) == nil {
		t.Error("decode must never return nil")
	}
}
