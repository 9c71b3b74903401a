package services

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPreviewURL(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	now := time.UnixMilli(1756700000000)

	t.Run("full options", func(t *testing.T) {
		got := previewURL("https://app.test", id, PreviewOptions{
			Width:      256,
			Height:     256,
			Gravity:    "center",
			Quality:    85,
			Radius:     12,
			Background: "ffffff",
			Output:     "webp",
		}, now)

		prefix := "https://app.test/api/files/" + id.String() + "/view?"
		if !strings.HasPrefix(got, prefix) {
			t.Fatalf("url = %q, want prefix %q", got, prefix)
		}

		q, err := url.ParseQuery(strings.TrimPrefix(got, prefix))
		if err != nil {
			t.Fatalf("unparseable query: %v", err)
		}
		want := map[string]string{
			"width":      "256",
			"height":     "256",
			"gravity":    "center",
			"quality":    "85",
			"radius":     "12",
			"background": "ffffff",
			"output":     "webp",
			"ts":         strconv.FormatInt(now.UnixMilli(), 10),
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query[%q] = %q, want %q", k, q.Get(k), v)
			}
		}
	})

	t.Run("zero options still carry a timestamp", func(t *testing.T) {
		got := previewURL("https://app.test", id, PreviewOptions{}, now)
		q, err := url.ParseQuery(strings.SplitN(got, "?", 2)[1])
		if err != nil {
			t.Fatalf("unparseable query: %v", err)
		}
		if q.Get("ts") == "" {
			t.Error("ts parameter missing")
		}
		for _, absent := range []string{"width", "height", "gravity", "quality", "radius", "background", "output"} {
			if q.Has(absent) {
				t.Errorf("zero option %q should be omitted", absent)
			}
		}
	})

	t.Run("timestamp tracks the clock", func(t *testing.T) {
		a := previewURL("https://app.test", id, PreviewOptions{}, time.UnixMilli(1000))
		b := previewURL("https://app.test", id, PreviewOptions{}, time.UnixMilli(2000))
		if a == b {
			t.Error("two derivations at different times should differ")
		}
	})
}
