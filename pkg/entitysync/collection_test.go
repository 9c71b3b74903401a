package entitysync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Note string `json:"note"`
}

type fakeListRemote struct {
	mu        sync.Mutex
	items     map[string]item
	nextID    int
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	listCalls int
}

func newFakeListRemote() *fakeListRemote {
	return &fakeListRemote{items: make(map[string]item)}
}

func (r *fakeListRemote) List(ctx context.Context, id Identity) ([]item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	return out, nil
}

func (r *fakeListRemote) Create(ctx context.Context, id Identity, it item) (item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return item{}, r.createErr
	}
	r.nextID++
	it.ID = fmt.Sprintf("srv-%d", r.nextID)
	r.items[it.ID] = it
	return it, nil
}

func (r *fakeListRemote) Update(ctx context.Context, id Identity, itemID string, patch map[string]any) (item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return item{}, r.updateErr
	}
	it, ok := r.items[itemID]
	if !ok {
		return item{}, &fakeErr{notFound: true}
	}
	if name, ok := patch["name"].(string); ok {
		it.Name = name
	}
	if note, ok := patch["note"].(string); ok {
		it.Note = note
	}
	r.items[itemID] = it
	return it, nil
}

func (r *fakeListRemote) Delete(ctx context.Context, id Identity, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.items[itemID]; !ok {
		return &fakeErr{notFound: true}
	}
	delete(r.items, itemID)
	return nil
}

func newTestCollection(remote *fakeListRemote, cache localcache.Store) *Collection[item] {
	return NewCollection[item](remote, cache, CollectionDefinition[item]{
		CacheKey: func(id Identity) string { return "items_" + id.UserID },
		ID:       func(it item) string { return it.ID },
		SetID:    func(it *item, id string) { it.ID = id },
	})
}

func TestAddPromotesLocalID(t *testing.T) {
	remote := newFakeListRemote()
	c := newTestCollection(remote, localcache.NewMemory())

	got, err := c.Add(context.Background(), alice, item{Name: "Bob"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if IsLocalID(got.ID) {
		t.Errorf("successful add should carry the server id, got %q", got.ID)
	}

	items, _ := c.Load(context.Background(), alice)
	if len(items) != 1 || items[0].ID != got.ID {
		t.Errorf("list out of sync: %+v", items)
	}
}

func TestAddKeepsLocalItemWhenPushFails(t *testing.T) {
	remote := newFakeListRemote()
	remote.createErr = errors.New("network down")
	c := newTestCollection(remote, localcache.NewMemory())

	got, err := c.Add(context.Background(), alice, item{Name: "Bob"})
	if err != nil {
		t.Fatalf("Add should not fail the caller on push failure: %v", err)
	}
	if !IsLocalID(got.ID) {
		t.Errorf("pending item should carry a local id, got %q", got.ID)
	}
	if !c.Err() {
		t.Error("error flag should be raised")
	}

	// Flush after the network comes back promotes the item.
	remote.mu.Lock()
	remote.createErr = nil
	remote.mu.Unlock()
	if err := c.Flush(context.Background(), alice); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if c.Err() {
		t.Error("error flag should clear after a clean flush")
	}

	items, _ := c.Load(context.Background(), alice)
	if len(items) != 1 || IsLocalID(items[0].ID) {
		t.Errorf("flush should promote local ids: %+v", items)
	}
}

func TestUpdateFallsBackToCreateOnRemoteMiss(t *testing.T) {
	remote := newFakeListRemote()
	c := newTestCollection(remote, localcache.NewMemory())

	created, err := c.Add(context.Background(), alice, item{Name: "Bob"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Another session deleted it server-side; the local edit recreates it.
	remote.mu.Lock()
	delete(remote.items, created.ID)
	remote.mu.Unlock()

	got, err := c.Update(context.Background(), alice, created.ID, map[string]any{"note": "still here"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Note != "still here" {
		t.Errorf("edit lost: %+v", got)
	}

	remote.mu.Lock()
	stored, ok := remote.items[got.ID]
	remote.mu.Unlock()
	if !ok || stored.Note != "still here" {
		t.Errorf("item not recreated on the server: %+v", stored)
	}
}

func TestUpdateUnknownItem(t *testing.T) {
	c := newTestCollection(newFakeListRemote(), localcache.NewMemory())
	if _, err := c.Update(context.Background(), alice, "nope", map[string]any{"name": "x"}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestRemoveSuppressesRemoteNotFound(t *testing.T) {
	remote := newFakeListRemote()
	c := newTestCollection(remote, localcache.NewMemory())

	created, err := c.Add(context.Background(), alice, item{Name: "Bob"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	remote.mu.Lock()
	delete(remote.items, created.ID)
	remote.mu.Unlock()

	if err := c.Remove(context.Background(), alice, created.ID); err != nil {
		t.Fatalf("Remove should treat an already-deleted item as done: %v", err)
	}
	if c.Err() {
		t.Error("a not-found delete is not a sync failure")
	}

	items, _ := c.Load(context.Background(), alice)
	if len(items) != 0 {
		t.Errorf("item still listed locally: %+v", items)
	}
}

func TestGuestCollectionStaysLocal(t *testing.T) {
	remote := newFakeListRemote()
	c := newTestCollection(remote, localcache.NewMemory())
	guest := Identity{}

	got, err := c.Add(context.Background(), guest, item{Name: "Booth neighbor"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !IsLocalID(got.ID) {
		t.Errorf("guest items keep local ids, got %q", got.ID)
	}

	remote.mu.Lock()
	listCalls := remote.listCalls
	stored := len(remote.items)
	remote.mu.Unlock()
	if listCalls != 0 || stored != 0 {
		t.Errorf("guest session reached the server: %d list calls, %d items", listCalls, stored)
	}
}

func TestCollectionLoadReplacesMirrorWithRemote(t *testing.T) {
	// The mirrored list seeds the session, but the server's list wins;
	// only items still waiting on their first push are carried over.
	remote := newFakeListRemote()
	remote.items["srv-1"] = item{ID: "srv-1", Name: "Server Item"}
	cache := localcache.NewMemory()
	localcache.PutJSON(cache, "items_u1", []item{
		{ID: "srv-9", Name: "Stale Item"},
		{ID: "local_abc", Name: "Pending Item"},
	})

	c := newTestCollection(remote, cache)
	items, err := c.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	byID := map[string]item{}
	for _, it := range items {
		byID[it.ID] = it
	}
	if _, ok := byID["srv-1"]; !ok {
		t.Errorf("server item missing: %+v", items)
	}
	if _, ok := byID["srv-9"]; ok {
		t.Errorf("stale mirrored item survived: %+v", items)
	}
	if _, ok := byID["local_abc"]; !ok {
		t.Errorf("pending local item dropped: %+v", items)
	}

	remote.mu.Lock()
	defer remote.mu.Unlock()
	if remote.listCalls != 1 {
		t.Errorf("list calls = %d, want 1", remote.listCalls)
	}
}

func TestCollectionLoadDegradesToMirrorWhenOffline(t *testing.T) {
	remote := newFakeListRemote()
	remote.listErr = errors.New("network down")
	cache := localcache.NewMemory()
	localcache.PutJSON(cache, "items_u1", []item{{ID: "srv-1", Name: "Mirrored Item"}})

	c := newTestCollection(remote, cache)
	items, err := c.Load(context.Background(), alice)
	if err != nil {
		t.Fatalf("an unreachable server must not fail the load: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Mirrored Item" {
		t.Errorf("mirror not used: %+v", items)
	}
	if !c.Err() {
		t.Error("error flag should be raised while offline")
	}
}
