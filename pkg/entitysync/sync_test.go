package entitysync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
)

type doc struct {
	UserID string            `json:"user_id"`
	Name   string            `json:"name"`
	Color  string            `json:"color"`
	Tags   map[string]string `json:"tags"`
}

type fakeErr struct {
	notFound bool
	conflict bool
}

func (e *fakeErr) Error() string  { return "fake remote error" }
func (e *fakeErr) NotFound() bool { return e.notFound }
func (e *fakeErr) Conflict() bool { return e.conflict }

// fakeRemote scripts the server side: stored doc, error injection, and
// call counters.
type fakeRemote struct {
	mu             sync.Mutex
	stored         *doc
	missFirstFetch bool
	fetchErr       error
	createErr      error
	updateErr      error
	fetchCalls     atomic.Int64
	createCalls    atomic.Int64
	updateCalls    atomic.Int64
}

func (r *fakeRemote) Fetch(ctx context.Context, id Identity) (doc, error) {
	r.fetchCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return doc{}, r.fetchErr
	}
	if r.missFirstFetch {
		r.missFirstFetch = false
		return doc{}, &fakeErr{notFound: true}
	}
	if r.stored == nil {
		return doc{}, &fakeErr{notFound: true}
	}
	return *r.stored, nil
}

func (r *fakeRemote) Create(ctx context.Context, id Identity, d doc) (doc, error) {
	r.createCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return doc{}, r.createErr
	}
	if r.stored != nil {
		return doc{}, &fakeErr{conflict: true}
	}
	r.stored = &d
	return d, nil
}

func (r *fakeRemote) Update(ctx context.Context, id Identity, patch map[string]any) (doc, error) {
	r.updateCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return doc{}, r.updateErr
	}
	if name, ok := patch["name"].(string); ok {
		r.stored.Name = name
	}
	if color, ok := patch["color"].(string); ok {
		r.stored.Color = color
	}
	return *r.stored, nil
}

func newTestSyncer(remote *fakeRemote, cache localcache.Store) *Syncer[doc] {
	return NewSyncer[doc](remote, cache, Definition[doc]{
		CacheKey: func(id Identity) string { return "doc_" + id.UserID },
		Defaults: func(id Identity) doc {
			return doc{UserID: id.UserID, Name: id.Name, Color: "blue", Tags: map[string]string{}}
		},
	})
}

var alice = Identity{UserID: "u1", Name: "Alice", Email: "alice@x.com"}

func TestLoadCreatesDefaultsForNewUser(t *testing.T) {
	remote := &fakeRemote{}
	s := newTestSyncer(remote, localcache.NewMemory())

	got, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "Alice" || got.Color != "blue" {
		t.Errorf("defaults not applied: %+v", got)
	}
	if n := remote.createCalls.Load(); n != 1 {
		t.Errorf("create calls = %d, want exactly 1", n)
	}

	// Second load comes from memory: no more remote traffic.
	if _, err := s.Load(context.Background(), alice); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if n := remote.fetchCalls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestConcurrentLoadSharesOneFetch(t *testing.T) {
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Alice"}}
	s := newTestSyncer(remote, localcache.NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Load(context.Background(), alice); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := remote.fetchCalls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1 (deduplicated)", n)
	}
}

func TestCreateConflictAdoptsWinner(t *testing.T) {
	// First fetch misses, the create loses the race, the refetch finds
	// the winner's document. That copy is adopted, not an error.
	remote := &fakeRemote{
		stored:         &doc{UserID: "u1", Name: "Winner", Color: "red"},
		missFirstFetch: true,
		createErr:      &fakeErr{conflict: true},
	}
	s := newTestSyncer(remote, localcache.NewMemory())

	got, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "Winner" || got.Color != "red" {
		t.Errorf("conflict should adopt the existing document, got %+v", got)
	}
	if n := remote.fetchCalls.Load(); n != 2 {
		t.Errorf("fetch calls = %d, want miss + refetch", n)
	}
}

func TestUpdateIsOptimisticAndSurvivesPushFailure(t *testing.T) {
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Alice", Color: "blue"}}
	s := newTestSyncer(remote, localcache.NewMemory())

	remote.mu.Lock()
	remote.updateErr = errors.New("network down")
	remote.mu.Unlock()

	got, err := s.Update(context.Background(), alice, map[string]any{"color": "green"})
	if err != nil {
		t.Fatalf("Update should not fail the caller on push failure: %v", err)
	}
	if got.Color != "green" {
		t.Errorf("optimistic merge lost: %+v", got)
	}
	if !s.Err() {
		t.Error("error flag should be raised after a failed push")
	}

	// The optimistic state is what later loads see; no rollback.
	reloaded, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Color != "green" {
		t.Errorf("local copy rolled back: %+v", reloaded)
	}

	// A later successful push clears the flag.
	remote.mu.Lock()
	remote.updateErr = nil
	remote.mu.Unlock()
	if _, err := s.Update(context.Background(), alice, map[string]any{"name": "Alicia"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Err() {
		t.Error("error flag should clear after a successful push")
	}
}

func TestUpdateShallowMergeTouchesOnlyPatchedKeys(t *testing.T) {
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Alice", Color: "blue", Tags: map[string]string{"a": "1"}}}
	s := newTestSyncer(remote, localcache.NewMemory())

	got, err := s.Update(context.Background(), alice, map[string]any{"color": "red"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Alice" || got.Tags["a"] != "1" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestGuestStaysLocal(t *testing.T) {
	remote := &fakeRemote{}
	cache := localcache.NewMemory()
	s := newTestSyncer(remote, cache)
	guest := Identity{}

	got, err := s.Load(context.Background(), guest)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Color != "blue" {
		t.Errorf("guest should get defaults: %+v", got)
	}

	if _, err := s.Update(context.Background(), guest, map[string]any{"color": "black"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if n := remote.fetchCalls.Load() + remote.createCalls.Load() + remote.updateCalls.Load(); n != 0 {
		t.Errorf("guest session made %d remote calls, want 0", n)
	}

	// And the guest copy persists in the cache.
	if _, ok := localcache.GetJSON[doc](cache, "doc_"); !ok {
		t.Error("guest document not cached")
	}
}

func TestLoadReplacesCachedCopyWithRemote(t *testing.T) {
	// The cache only seeds the session. When the server has a document,
	// its copy wins and overwrites the mirror.
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Server Copy", Color: "red"}}
	cache := localcache.NewMemory()
	localcache.PutJSON(cache, "doc_u1", doc{UserID: "u1", Name: "Stale Cached Copy"})

	s := newTestSyncer(remote, cache)
	got, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "Server Copy" {
		t.Errorf("remote document not adopted: %+v", got)
	}
	if n := remote.fetchCalls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}

	mirrored, ok := localcache.GetJSON[doc](cache, "doc_u1")
	if !ok || mirrored.Name != "Server Copy" {
		t.Errorf("cache not overwritten with the remote copy: %+v", mirrored)
	}
}

func TestLoadDegradesToCachedCopyWhenOffline(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("network down")}
	cache := localcache.NewMemory()
	localcache.PutJSON(cache, "doc_u1", doc{UserID: "u1", Name: "Mirrored Copy", Color: "green"})

	s := newTestSyncer(remote, cache)
	got, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("an unreachable server must not fail the load: %v", err)
	}
	if got.Name != "Mirrored Copy" {
		t.Errorf("mirrored copy not used: %+v", got)
	}
	if !s.Err() {
		t.Error("error flag should be raised while offline")
	}
}

func TestLoadKeepsDefaultsWhenCreateFails(t *testing.T) {
	// No remote document and the create push fails outright: the caller
	// still gets working defaults, locally cached, with the flag raised.
	remote := &fakeRemote{createErr: errors.New("server down")}
	cache := localcache.NewMemory()
	s := newTestSyncer(remote, cache)

	got, err := s.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("a failed create must not fail the load: %v", err)
	}
	if got.Name != "Alice" || got.Color != "blue" {
		t.Errorf("defaults lost: %+v", got)
	}
	if !s.Err() {
		t.Error("error flag should be raised after a failed create")
	}
	if _, ok := localcache.GetJSON[doc](cache, "doc_u1"); !ok {
		t.Error("defaults should be cached even when the create fails")
	}
}

func TestUpdateRecreatesMissingDocument(t *testing.T) {
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Alice", Color: "blue"}}
	s := newTestSyncer(remote, localcache.NewMemory())

	if _, err := s.Load(context.Background(), alice); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Another session deleted the document; the patched copy is pushed
	// back with a create-with-id instead of surfacing a failure.
	remote.mu.Lock()
	remote.stored = nil
	remote.updateErr = &fakeErr{notFound: true}
	remote.mu.Unlock()

	got, err := s.Update(context.Background(), alice, map[string]any{"color": "green"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Color != "green" || got.Name != "Alice" {
		t.Errorf("merged copy lost on recreate: %+v", got)
	}
	if n := remote.createCalls.Load(); n != 1 {
		t.Errorf("create-with-id fallback calls = %d, want 1", n)
	}
	if s.Err() {
		t.Error("a successful recreate is not a sync failure")
	}

	remote.mu.Lock()
	recreated := remote.stored
	remote.mu.Unlock()
	if recreated == nil || recreated.Color != "green" {
		t.Errorf("document not recreated on the server: %+v", recreated)
	}
}


func TestInvalidateDropsLocalState(t *testing.T) {
	remote := &fakeRemote{stored: &doc{UserID: "u1", Name: "Alice"}}
	cache := localcache.NewMemory()
	s := newTestSyncer(remote, cache)

	if _, err := s.Load(context.Background(), alice); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Invalidate(alice)

	if _, ok := localcache.GetJSON[doc](cache, "doc_u1"); ok {
		t.Error("cache entry should be gone after Invalidate")
	}
	if _, err := s.Load(context.Background(), alice); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := remote.fetchCalls.Load(); n != 2 {
		t.Errorf("fetch calls = %d, want a fresh fetch after Invalidate", n)
	}
}
