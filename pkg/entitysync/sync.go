// Package entitysync keeps per-user documents in sync between a local
// cache and the server. The cache seeds each session but is never the
// source of truth while a remote document exists; writes are optimistic:
// the local copy updates immediately and a failed push never rolls it
// back, it only raises the sync error flag.
package entitysync

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
)

// Identity describes who the synced documents belong to. An empty UserID
// means a guest session: documents live only in the local cache and no
// remote calls are made.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

func (id Identity) Guest() bool { return id.UserID == "" }

// Remote is the server side of a singleton per-user document.
type Remote[T any] interface {
	Fetch(ctx context.Context, id Identity) (T, error)
	Create(ctx context.Context, id Identity, doc T) (T, error)
	Update(ctx context.Context, id Identity, patch map[string]any) (T, error)
}

// Definition wires a document type into a Syncer.
type Definition[T any] struct {
	// CacheKey returns the local cache key for the identity.
	CacheKey func(id Identity) string
	// Defaults builds the document for a user who has none yet.
	Defaults func(id Identity) T
}

type notFounder interface{ NotFound() bool }
type conflicter interface{ Conflict() bool }

func isNotFound(err error) bool {
	var nf notFounder
	return errors.As(err, &nf) && nf.NotFound()
}

func isConflict(err error) bool {
	var cf conflicter
	return errors.As(err, &cf) && cf.Conflict()
}

// Syncer manages one singleton document per identity.
type Syncer[T any] struct {
	remote Remote[T]
	cache  localcache.Store
	def    Definition[T]

	group singleflight.Group

	mu      sync.Mutex
	current map[string]T
	failed  bool
}

func NewSyncer[T any](remote Remote[T], cache localcache.Store, def Definition[T]) *Syncer[T] {
	return &Syncer[T]{
		remote:  remote,
		cache:   cache,
		def:     def,
		current: make(map[string]T),
	}
}

// Err reports whether the last remote operation failed. The local copy
// is still authoritative for display; callers surface this as a sync
// warning, not as data loss.
func (s *Syncer[T]) Err() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

func (s *Syncer[T]) setFailed(v bool) {
	s.mu.Lock()
	s.failed = v
	s.mu.Unlock()
}

// Load returns the identity's document. Session state is reused once
// populated; the first load of a session fetches the server's copy,
// which replaces whatever the cache mirrored and overwrites it. A miss
// installs the defaults locally and pushes a create; any remote failure
// degrades to the cached copy (or the defaults) with the error flag
// raised, never a hard failure. Concurrent loads for the same key share
// a single fetch.
func (s *Syncer[T]) Load(ctx context.Context, id Identity) (T, error) {
	key := s.def.CacheKey(id)

	s.mu.Lock()
	if doc, ok := s.current[key]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.load(ctx, id, key), nil
	})

	doc := v.(T)
	s.mu.Lock()
	s.current[key] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *Syncer[T]) load(ctx context.Context, id Identity, key string) T {
	cached, haveCached := localcache.GetJSON[T](s.cache, key)

	if id.Guest() {
		if haveCached {
			return cached
		}
		doc := s.def.Defaults(id)
		localcache.PutJSON(s.cache, key, doc)
		return doc
	}

	// The cache only seeds the session; the server's copy replaces it.
	doc, err := s.remote.Fetch(ctx, id)
	switch {
	case err == nil:
		localcache.PutJSON(s.cache, key, doc)
		return doc
	case isNotFound(err):
		return s.createDefaults(ctx, id, key)
	case haveCached:
		// Offline: the mirrored copy keeps the app usable.
		s.setFailed(true)
		return cached
	default:
		s.setFailed(true)
		doc = s.def.Defaults(id)
		localcache.PutJSON(s.cache, key, doc)
		return doc
	}
}

// createDefaults installs the defaults locally first, then pushes them.
// Losing the create race adopts the winner's copy; any other failure
// leaves the local defaults in place and raises the error flag.
func (s *Syncer[T]) createDefaults(ctx context.Context, id Identity, key string) T {
	doc := s.def.Defaults(id)
	localcache.PutJSON(s.cache, key, doc)

	created, err := s.remote.Create(ctx, id, doc)
	if err != nil {
		if isConflict(err) {
			if remote, ferr := s.remote.Fetch(ctx, id); ferr == nil {
				localcache.PutJSON(s.cache, key, remote)
				return remote
			}
		}
		s.setFailed(true)
		return doc
	}

	localcache.PutJSON(s.cache, key, created)
	return created
}

// Update applies a shallow patch optimistically. The merged document is
// stored locally before the push; if the push fails the local copy stays
// and the error flag is raised. A not-found from the server means the
// document vanished out from under us, so the merged copy is recreated
// with a create-with-id. The returned document is whatever the caller
// should display next: the server's copy on success, the optimistic
// merge otherwise.
func (s *Syncer[T]) Update(ctx context.Context, id Identity, patch map[string]any) (T, error) {
	var zero T
	key := s.def.CacheKey(id)

	cur, err := s.Load(ctx, id)
	if err != nil {
		return zero, err
	}

	next, err := shallowMerge(cur, patch)
	if err != nil {
		return zero, err
	}

	s.store(key, next)

	if id.Guest() {
		return next, nil
	}

	updated, err := s.remote.Update(ctx, id, patch)
	if err != nil {
		if isNotFound(err) {
			if created, cerr := s.remote.Create(ctx, id, next); cerr == nil {
				s.store(key, created)
				s.setFailed(false)
				return created, nil
			}
		}
		s.setFailed(true)
		return next, nil
	}

	s.store(key, updated)
	s.setFailed(false)
	return updated, nil
}

// Invalidate drops the identity's document from memory and cache. Used on
// logout so the next session starts from the server.
func (s *Syncer[T]) Invalidate(id Identity) {
	key := s.def.CacheKey(id)
	s.mu.Lock()
	delete(s.current, key)
	s.failed = false
	s.mu.Unlock()
	s.cache.Delete(key)
}

func (s *Syncer[T]) store(key string, doc T) {
	s.mu.Lock()
	s.current[key] = doc
	s.mu.Unlock()
	localcache.PutJSON(s.cache, key, doc)
}
