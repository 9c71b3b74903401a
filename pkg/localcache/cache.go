// Package localcache is the device-side mirror of a user's documents: a
// small key/value store the sync layer reads before touching the network.
package localcache

import "encoding/json"

// Store is a flat key/value blob store.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Cache key layout. Signed-in users get per-user keys so switching
// accounts on one device never shows someone else's data; guests share
// the unscoped keys.
const (
	guestProfileKey    = "profile"
	guestQrSettingsKey = "qrSettings_guest"
	contactsKey        = "contacts"
)

func ProfileKey(userID string) string {
	if userID == "" {
		return guestProfileKey
	}
	return "profile_" + userID
}

func QrSettingsKey(userID string) string {
	if userID == "" {
		return guestQrSettingsKey
	}
	return "qrSettings_" + userID
}

func ContactsKey(userID string) string {
	return contactsKey
}

// GetJSON reads and decodes a cached value. A missing key, a read error,
// or a corrupt value all report a miss; the cache is a mirror, the server
// is the source of truth.
func GetJSON[T any](s Store, key string) (T, bool) {
	var doc T
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return doc, false
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// PutJSON encodes and stores a value. Write errors are swallowed: a cache
// that cannot persist degrades to fetch-every-time, it does not break the
// app.
func PutJSON[T any](s Store, key string, doc T) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	_ = s.Put(key, raw)
}
