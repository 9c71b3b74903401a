package localcache

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T, name string, open func(t *testing.T) Store) {
	t.Run(name, func(t *testing.T) {
		s := open(t)
		defer s.Close()

		if _, ok, err := s.Get("missing"); err != nil || ok {
			t.Errorf("missing key: ok=%v err=%v", ok, err)
		}

		if err := s.Put("k", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, ok, err := s.Get("k")
		if err != nil || !ok || string(got) != `{"a":1}` {
			t.Errorf("Get = %q, ok=%v, err=%v", got, ok, err)
		}

		// Overwrite
		if err := s.Put("k", []byte(`{"a":2}`)); err != nil {
			t.Fatalf("Put overwrite: %v", err)
		}
		got, _, _ = s.Get("k")
		if string(got) != `{"a":2}` {
			t.Errorf("overwrite lost: %q", got)
		}

		if err := s.Delete("k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := s.Get("k"); ok {
			t.Error("key survived delete")
		}

		// Deleting a missing key is not an error.
		if err := s.Delete("k"); err != nil {
			t.Errorf("Delete missing: %v", err)
		}
	})
}

func TestStores(t *testing.T) {
	testStore(t, "memory", func(t *testing.T) Store {
		return NewMemory()
	})
	testStore(t, "sqlite", func(t *testing.T) Store {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return s
	})
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Put("profile_u1", []byte(`{"name":"Jane"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, ok, err := s2.Get("profile_u1")
	if err != nil || !ok || string(got) != `{"name":"Jane"}` {
		t.Errorf("value did not survive reopen: %q ok=%v err=%v", got, ok, err)
	}
}

func TestKeys(t *testing.T) {
	if got := ProfileKey("u1"); got != "profile_u1" {
		t.Errorf("ProfileKey = %q", got)
	}
	if got := ProfileKey(""); got != "profile" {
		t.Errorf("guest ProfileKey = %q", got)
	}
	if got := QrSettingsKey("u1"); got != "qrSettings_u1" {
		t.Errorf("QrSettingsKey = %q", got)
	}
	if got := QrSettingsKey(""); got != "qrSettings_guest" {
		t.Errorf("guest QrSettingsKey = %q", got)
	}
	if got := ContactsKey("u1"); got != "contacts" {
		t.Errorf("ContactsKey = %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	type v struct {
		Name string `json:"name"`
	}
	s := NewMemory()

	PutJSON(s, "k", v{Name: "Jane"})
	got, ok := GetJSON[v](s, "k")
	if !ok || got.Name != "Jane" {
		t.Errorf("got %+v ok=%v", got, ok)
	}

	// Corrupt values read as a miss, not an error.
	s.Put("bad", []byte("not json"))
	if _, ok := GetJSON[v](s, "bad"); ok {
		t.Error("corrupt value should be a miss")
	}
}
