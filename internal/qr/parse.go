// Package qr converts scanned QR text payloads into partial contacts and
// renders profiles back out as vCard text. The parser is deliberately
// forgiving: any non-empty payload yields a contact, falling back to a
// free-text note when no structure can be recognized.
package qr

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParsedContact is the partial contact extracted from a payload.
type ParsedContact struct {
	Name    string
	Title   string
	Company string
	Email   string
	Phone   string
	Notes   string
	Socials map[string]string
	Format  string
}

// Payload formats, in dispatch order.
const (
	FormatVCard  = "vcard"
	FormatMeCard = "mecard"
	FormatJSON   = "json"
	FormatURL    = "url"
	FormatEmail  = "email"
	FormatPhone  = "phone"
	FormatNote   = "note"
)

// socialDomains maps hostname substrings to social bucket and display name.
var socialDomains = []struct {
	substr string
	key    string
	label  string
}{
	{"linkedin.com", "linkedin", "LinkedIn Contact"},
	{"twitter.com", "twitter", "Twitter Contact"},
	{"x.com", "twitter", "Twitter Contact"},
	{"instagram.com", "instagram", "Instagram Contact"},
	{"facebook.com", "facebook", "Facebook Contact"},
}

var phoneRe = regexp.MustCompile(`^[+0-9\s\-()]+$`)

// Parse sniffs the payload format and extracts contact fields. First match
// wins, so order matters: vCard, MeCard, JSON object, URL, bare email, bare
// phone, then free text. Returns nil for blank input.
func Parse(payload string) *ParsedContact {
	text := strings.TrimSpace(payload)
	if text == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	if strings.HasPrefix(upper, "BEGIN:VCARD") {
		return parseVCard(text)
	}
	if strings.HasPrefix(upper, "MECARD:") {
		return parseMeCard(text)
	}
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		// Malformed JSON is not "syntactically a JSON object"; keep sniffing.
		if c := parseJSON(text); c != nil {
			return c
		}
	}

	switch {
	case strings.HasPrefix(strings.ToLower(text), "http"):
		return parseURL(text)
	case strings.Contains(text, "@") && strings.Contains(text, "."):
		return &ParsedContact{
			Name:   "Email Contact",
			Email:  text,
			Format: FormatEmail,
		}
	case phoneRe.MatchString(text) && strings.ContainsAny(text, "0123456789"):
		return &ParsedContact{
			Name:   "Phone Contact",
			Phone:  text,
			Format: FormatPhone,
		}
	default:
		return textNote(text)
	}
}

func textNote(text string) *ParsedContact {
	return &ParsedContact{
		Name:   "Text Note",
		Notes:  text,
		Format: FormatNote,
	}
}

// parseVCard is line-oriented and handles simple continuation (a line
// starting with a space extends the previous value). It does not implement
// full RFC 6350 folding or quoting.
func parseVCard(text string) *ParsedContact {
	c := &ParsedContact{Format: FormatVCard}

	lines := splitLines(text)
	unfolded := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, " ") && len(unfolded) > 0 {
			unfolded[len(unfolded)-1] += strings.TrimPrefix(line, " ")
			continue
		}
		unfolded = append(unfolded, line)
	}

	for _, line := range unfolded {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		// Strip property parameters, e.g. TEL;TYPE=CELL.
		prop, _, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(key)), ";")
		switch prop {
		case "BEGIN", "END", "VERSION":
			// structural lines
		case "FN":
			if c.Name == "" {
				c.Name = value
			}
		case "N":
			if c.Name == "" {
				c.Name = strings.Join(strings.Fields(strings.ReplaceAll(value, ";", " ")), " ")
			}
		case "TITLE":
			c.Title = value
		case "ORG":
			org, _, _ := strings.Cut(value, ";")
			c.Company = strings.TrimSpace(org)
		case "EMAIL":
			c.Email = value
		case "TEL":
			c.Phone = value
		case "NOTE":
			c.Notes = value
		case "URL":
			addSocial(c, value)
		}
	}
	return c
}

// parseMeCard handles the MECARD:KEY:value;KEY:value;; encoding.
func parseMeCard(text string) *ParsedContact {
	c := &ParsedContact{Format: FormatMeCard}

	body := text[len("MECARD:"):]
	for _, field := range strings.Split(body, ";") {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "N":
			// MeCard separates name parts with a comma.
			c.Name = strings.Join(strings.Fields(strings.ReplaceAll(value, ",", " ")), " ")
		case "TEL":
			c.Phone = value
		case "EMAIL":
			c.Email = value
		case "ORG":
			c.Company = value
		case "TITLE":
			c.Title = value
		case "URL":
			setSocial(c, "website", value)
		case "NOTE":
			c.Notes = value
		}
	}
	return c
}

// parseJSON maps recognized keys with fallback aliases. Returns nil when
// the payload is not a JSON object.
func parseJSON(text string) *ParsedContact {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}

	c := &ParsedContact{Format: FormatJSON}
	c.Name = firstString(obj, "name", "fn", "fullName")
	c.Title = firstString(obj, "title", "jobTitle")
	c.Company = firstString(obj, "company", "org", "organization")
	c.Email = firstString(obj, "email")
	c.Phone = firstString(obj, "phone", "tel")
	c.Notes = firstString(obj, "notes", "note")

	if raw, ok := obj["socials"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				setSocial(c, k, s)
			}
		}
	}
	return c
}

func parseURL(text string) *ParsedContact {
	c := &ParsedContact{Format: FormatURL}
	lower := strings.ToLower(text)
	for _, d := range socialDomains {
		if strings.Contains(lower, d.substr) {
			c.Name = d.label
			setSocial(c, d.key, text)
			return c
		}
	}
	c.Name = "Web Contact"
	setSocial(c, "website", text)
	return c
}

// addSocial classifies a URL into a social bucket using the same hostname
// substring heuristic as bare-URL payloads, defaulting to website.
func addSocial(c *ParsedContact, url string) {
	lower := strings.ToLower(url)
	for _, d := range socialDomains {
		if strings.Contains(lower, d.substr) {
			setSocial(c, d.key, url)
			return
		}
	}
	setSocial(c, "website", url)
}

func setSocial(c *ParsedContact, key, value string) {
	if c.Socials == nil {
		c.Socials = make(map[string]string)
	}
	c.Socials[key] = value
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
