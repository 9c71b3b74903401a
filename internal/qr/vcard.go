package qr

import (
	"sort"
	"strings"
)

// Card is the subset of profile fields embedded in a shareable vCard.
type Card struct {
	Name    string
	Title   string
	Company string
	Email   string
	Phone   string
	Socials map[string]string
}

// EncodeVCard renders a version 3.0 vCard that Parse round-trips.
func EncodeVCard(card Card) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\r\n")
	b.WriteString("VERSION:3.0\r\n")
	writeProp(&b, "FN", card.Name)
	writeProp(&b, "TITLE", card.Title)
	writeProp(&b, "ORG", card.Company)
	writeProp(&b, "EMAIL", card.Email)
	writeProp(&b, "TEL", card.Phone)

	// Deterministic output regardless of map iteration order.
	keys := make([]string, 0, len(card.Socials))
	for k := range card.Socials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeProp(&b, "URL", card.Socials[k])
	}

	b.WriteString("END:VCARD\r\n")
	return b.String()
}

func writeProp(b *strings.Builder, prop, value string) {
	if value == "" {
		return
	}
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	b.WriteString(prop)
	b.WriteString(":")
	b.WriteString(value)
	b.WriteString("\r\n")
}
