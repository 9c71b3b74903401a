package qr

import "testing"

func TestParseVCard(t *testing.T) {
	t.Run("full card", func(t *testing.T) {
		payload := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nTITLE:Engineer\r\nORG:Acme Corp;R&D\r\nTEL;TYPE=CELL:+1 555 123 4567\r\nEMAIL:jane@acme.test\r\nNOTE:Met at the booth\r\nEND:VCARD"

		got := Parse(payload)
		if got.Format != FormatVCard {
			t.Fatalf("format = %q, want %q", got.Format, FormatVCard)
		}
		if got.Name != "Jane Doe" {
			t.Errorf("name = %q, want %q", got.Name, "Jane Doe")
		}
		if got.Title != "Engineer" {
			t.Errorf("title = %q, want %q", got.Title, "Engineer")
		}
		if got.Company != "Acme Corp" {
			t.Errorf("company = %q, want %q (first ORG segment only)", got.Company, "Acme Corp")
		}
		if got.Phone != "+1 555 123 4567" {
			t.Errorf("phone = %q, want %q (params stripped)", got.Phone, "+1 555 123 4567")
		}
		if got.Email != "jane@acme.test" {
			t.Errorf("email = %q", got.Email)
		}
		if got.Notes != "Met at the booth" {
			t.Errorf("notes = %q", got.Notes)
		}
	})

	t.Run("FN wins over N", func(t *testing.T) {
		payload := "BEGIN:VCARD\nN:Doe;Jane;;;\nFN:Jane Doe\nEND:VCARD"
		got := Parse(payload)
		if got.Name != "Jane Doe" {
			t.Errorf("name = %q, want FN value verbatim", got.Name)
		}
	})

	t.Run("N fallback drops semicolons", func(t *testing.T) {
		payload := "BEGIN:VCARD\nN:Doe;Jane;;;\nEND:VCARD"
		got := Parse(payload)
		if got.Name != "Doe Jane" {
			t.Errorf("name = %q, want %q", got.Name, "Doe Jane")
		}
	})

	t.Run("continuation lines", func(t *testing.T) {
		payload := "BEGIN:VCARD\nNOTE:first part\n second part\nEND:VCARD"
		got := Parse(payload)
		if got.Notes != "first partsecond part" {
			t.Errorf("notes = %q", got.Notes)
		}
	})
}

func TestParseMeCard(t *testing.T) {
	got := Parse("MECARD:N:Doe,Jane;TEL:5551234;EMAIL:jane@x.com;;")
	if got.Format != FormatMeCard {
		t.Fatalf("format = %q, want %q", got.Format, FormatMeCard)
	}
	if got.Name != "Doe Jane" {
		t.Errorf("name = %q, want %q", got.Name, "Doe Jane")
	}
	if got.Phone != "5551234" {
		t.Errorf("phone = %q", got.Phone)
	}
	if got.Email != "jane@x.com" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("canonical keys", func(t *testing.T) {
		got := Parse(`{"name":"Jane","title":"Engineer","company":"Acme","email":"jane@x.com","phone":"555","notes":"hi"}`)
		if got.Format != FormatJSON {
			t.Fatalf("format = %q, want %q", got.Format, FormatJSON)
		}
		if got.Name != "Jane" || got.Title != "Engineer" || got.Company != "Acme" {
			t.Errorf("unexpected fields: %+v", got)
		}
	})

	t.Run("alias keys", func(t *testing.T) {
		got := Parse(`{"fullName":"Jane Doe","jobTitle":"CTO","org":"Acme","tel":"555","note":"hey"}`)
		if got.Name != "Jane Doe" {
			t.Errorf("name = %q (fullName alias)", got.Name)
		}
		if got.Title != "CTO" {
			t.Errorf("title = %q (jobTitle alias)", got.Title)
		}
		if got.Company != "Acme" {
			t.Errorf("company = %q (org alias)", got.Company)
		}
		if got.Phone != "555" {
			t.Errorf("phone = %q (tel alias)", got.Phone)
		}
		if got.Notes != "hey" {
			t.Errorf("notes = %q (note alias)", got.Notes)
		}
	})

	t.Run("socials object", func(t *testing.T) {
		got := Parse(`{"name":"Jane","socials":{"linkedin":"https://linkedin.com/in/jane"}}`)
		if got.Socials["linkedin"] != "https://linkedin.com/in/jane" {
			t.Errorf("socials = %v", got.Socials)
		}
	})

	t.Run("invalid JSON falls through to note", func(t *testing.T) {
		got := Parse(`{not valid json}`)
		if got.Format != FormatNote {
			t.Errorf("format = %q, want fallthrough to %q", got.Format, FormatNote)
		}
	})
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantName string
		social   string
	}{
		{"linkedin", "https://linkedin.com/in/jane", "LinkedIn Contact", "linkedin"},
		{"twitter", "https://twitter.com/jane", "Twitter Contact", "twitter"},
		{"x.com maps to twitter", "https://x.com/jane", "Twitter Contact", "twitter"},
		{"instagram", "https://instagram.com/jane", "Instagram Contact", "instagram"},
		{"facebook", "https://facebook.com/jane", "Facebook Contact", "facebook"},
		{"plain site", "https://example.com/about", "Web Contact", "website"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.payload)
			if got.Format != FormatURL {
				t.Fatalf("format = %q, want %q", got.Format, FormatURL)
			}
			if got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Socials[tt.social] != tt.payload {
				t.Errorf("socials[%q] = %q, want original URL", tt.social, got.Socials[tt.social])
			}
		})
	}
}

func TestParseEmailPhoneNote(t *testing.T) {
	t.Run("bare email", func(t *testing.T) {
		got := Parse("jane@acme.test")
		if got.Format != FormatEmail {
			t.Fatalf("format = %q", got.Format)
		}
		if got.Name != "Email Contact" || got.Email != "jane@acme.test" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("bare phone", func(t *testing.T) {
		got := Parse("+1 (555) 123-4567")
		if got.Format != FormatPhone {
			t.Fatalf("format = %q", got.Format)
		}
		if got.Name != "Phone Contact" || got.Phone != "+1 (555) 123-4567" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("punctuation without digits is a note", func(t *testing.T) {
		got := Parse("+-+-")
		if got.Format != FormatNote {
			t.Errorf("format = %q, a phone needs at least one digit", got.Format)
		}
	})

	t.Run("free text", func(t *testing.T) {
		got := Parse("see you at the afterparty")
		if got.Format != FormatNote {
			t.Fatalf("format = %q", got.Format)
		}
		if got.Name != "Text Note" || got.Notes != "see you at the afterparty" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		if got := Parse(""); got != nil {
			t.Errorf("Parse(\"\") = %+v, want nil", got)
		}
		if got := Parse("   \n "); got != nil {
			t.Errorf("whitespace-only payload = %+v, want nil", got)
		}
	})
}

func TestParseDispatchOrder(t *testing.T) {
	// A vCard containing a URL in a NOTE is still a vCard; the first
	// matching detector wins.
	payload := "BEGIN:VCARD\nFN:Jane\nNOTE:https://linkedin.com/in/jane\nEND:VCARD"
	got := Parse(payload)
	if got.Format != FormatVCard {
		t.Errorf("format = %q, want %q", got.Format, FormatVCard)
	}
}
