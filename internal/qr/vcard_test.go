package qr

import (
	"strings"
	"testing"
)

func TestEncodeVCard(t *testing.T) {
	card := Card{
		Name:    "Jane Doe",
		Title:   "Engineer",
		Company: "Acme",
		Email:   "jane@acme.test",
		Phone:   "+1 555 123 4567",
		Socials: map[string]string{
			"linkedin": "https://linkedin.com/in/jane",
		},
	}

	out := EncodeVCard(card)

	if !strings.HasPrefix(out, "BEGIN:VCARD\r\n") || !strings.HasSuffix(out, "END:VCARD\r\n") {
		t.Fatalf("missing envelope: %q", out)
	}
	for _, want := range []string{
		"VERSION:3.0\r\n",
		"FN:Jane Doe\r\n",
		"TITLE:Engineer\r\n",
		"ORG:Acme\r\n",
		"EMAIL:jane@acme.test\r\n",
		"TEL:+1 555 123 4567\r\n",
		"URL:https://linkedin.com/in/jane\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEncodeVCardSkipsEmptyFields(t *testing.T) {
	out := EncodeVCard(Card{Name: "Jane"})
	for _, absent := range []string{"TITLE:", "ORG:", "EMAIL:", "TEL:", "URL:"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty field %q should be omitted:\n%s", absent, out)
		}
	}
}

func TestEncodeVCardFlattensNewlines(t *testing.T) {
	out := EncodeVCard(Card{Name: "Jane\nDoe"})
	if !strings.Contains(out, "FN:Jane Doe\r\n") {
		t.Errorf("newline not flattened:\n%s", out)
	}
}

func TestVCardRoundTrip(t *testing.T) {
	card := Card{
		Name:    "Jane Doe",
		Title:   "CTO",
		Company: "Acme",
		Email:   "jane@acme.test",
		Phone:   "555",
		Socials: map[string]string{"linkedin": "https://linkedin.com/in/jane"},
	}

	got := Parse(EncodeVCard(card))
	if got == nil || got.Format != FormatVCard {
		t.Fatalf("round trip did not parse as vcard: %+v", got)
	}
	if got.Name != card.Name || got.Title != card.Title || got.Company != card.Company ||
		got.Email != card.Email || got.Phone != card.Phone {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Socials["linkedin"] != card.Socials["linkedin"] {
		t.Errorf("socials round trip mismatch: %v", got.Socials)
	}
}
