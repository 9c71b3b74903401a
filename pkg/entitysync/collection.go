package entitysync

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/linkbadge/linkbadge-backend/pkg/localcache"
)

// localIDPrefix marks items created while offline or as a guest. They are
// promoted to server ids when a push succeeds.
const localIDPrefix = "local_"

// IsLocalID reports whether an item id was assigned locally and has not
// been acknowledged by the server yet.
func IsLocalID(id string) bool { return strings.HasPrefix(id, localIDPrefix) }

func newLocalID() string { return localIDPrefix + uuid.NewString() }

// CollectionRemote is the server side of a per-user list of items.
type CollectionRemote[T any] interface {
	List(ctx context.Context, id Identity) ([]T, error)
	Create(ctx context.Context, id Identity, item T) (T, error)
	Update(ctx context.Context, id Identity, itemID string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id Identity, itemID string) error
}

// CollectionDefinition wires an item type into a Collection.
type CollectionDefinition[T any] struct {
	CacheKey func(id Identity) string
	// ID and SetID read and write the item's identifier field.
	ID    func(item T) string
	SetID func(item *T, id string)
}

// Collection manages a per-user list with the same optimistic rules as
// Syncer: local state changes first and survives push failures.
type Collection[T any] struct {
	remote CollectionRemote[T]
	cache  localcache.Store
	def    CollectionDefinition[T]

	group singleflight.Group

	mu     sync.Mutex
	items  map[string][]T
	loaded map[string]bool
	failed bool
}

func NewCollection[T any](remote CollectionRemote[T], cache localcache.Store, def CollectionDefinition[T]) *Collection[T] {
	return &Collection[T]{
		remote: remote,
		cache:  cache,
		def:    def,
		items:  make(map[string][]T),
		loaded: make(map[string]bool),
	}
}

func (c *Collection[T]) Err() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

func (c *Collection[T]) setFailed(v bool) {
	c.mu.Lock()
	c.failed = v
	c.mu.Unlock()
}

// Load returns the identity's items. The cached list seeds the session,
// but the first load fetches the server's list, which replaces the
// mirror; items still waiting on their first push are carried over. A
// failed list degrades to the mirrored copy with the error flag raised.
// Concurrent loads share one remote call.
func (c *Collection[T]) Load(ctx context.Context, id Identity) ([]T, error) {
	key := c.def.CacheKey(id)

	c.mu.Lock()
	if c.loaded[key] {
		out := append([]T(nil), c.items[key]...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, id, key)
	})
	if err != nil {
		return nil, err
	}

	items := v.([]T)
	c.mu.Lock()
	c.items[key] = items
	c.loaded[key] = true
	out := append([]T(nil), items...)
	c.mu.Unlock()
	return out, nil
}

func (c *Collection[T]) load(ctx context.Context, id Identity, key string) ([]T, error) {
	cached, haveCached := localcache.GetJSON[[]T](c.cache, key)

	if id.Guest() {
		if haveCached {
			return cached, nil
		}
		items := []T{}
		localcache.PutJSON(c.cache, key, items)
		return items, nil
	}

	items, err := c.remote.List(ctx, id)
	if err != nil {
		// Offline: the mirrored list keeps the app usable.
		c.setFailed(true)
		if haveCached {
			return cached, nil
		}
		items = []T{}
		localcache.PutJSON(c.cache, key, items)
		return items, nil
	}
	if items == nil {
		items = []T{}
	}

	// The server's list replaces the mirror, except for items that have
	// not been acknowledged yet.
	for _, it := range cached {
		if IsLocalID(c.def.ID(it)) {
			items = append(items, it)
		}
	}
	localcache.PutJSON(c.cache, key, items)
	return items, nil
}

// Add inserts an item. It gets a local id immediately; a successful push
// swaps in the server's id, a failed push leaves the local item pending
// for Flush.
func (c *Collection[T]) Add(ctx context.Context, id Identity, item T) (T, error) {
	var zero T
	key := c.def.CacheKey(id)

	if _, err := c.Load(ctx, id); err != nil {
		return zero, err
	}

	localID := newLocalID()
	c.def.SetID(&item, localID)
	c.insert(key, item)

	if id.Guest() {
		return item, nil
	}

	created, err := c.remote.Create(ctx, id, item)
	if err != nil {
		c.setFailed(true)
		return item, nil
	}

	c.replace(key, localID, created)
	return created, nil
}

// Update patches an item in place. Pending local items stay local; for
// server items a not-found response falls back to create, which covers
// an item deleted from another session and re-edited here.
func (c *Collection[T]) Update(ctx context.Context, id Identity, itemID string, patch map[string]any) (T, error) {
	var zero T
	key := c.def.CacheKey(id)

	if _, err := c.Load(ctx, id); err != nil {
		return zero, err
	}

	cur, ok := c.find(key, itemID)
	if !ok {
		return zero, ErrItemNotFound
	}

	next, err := shallowMerge(cur, patch)
	if err != nil {
		return zero, err
	}
	c.def.SetID(&next, itemID)
	c.replace(key, itemID, next)

	if id.Guest() || IsLocalID(itemID) {
		return next, nil
	}

	updated, err := c.remote.Update(ctx, id, itemID, patch)
	if err != nil {
		if isNotFound(err) {
			created, cerr := c.remote.Create(ctx, id, next)
			if cerr == nil {
				c.replace(key, itemID, created)
				return created, nil
			}
		}
		c.setFailed(true)
		return next, nil
	}

	c.replace(key, itemID, updated)
	return updated, nil
}

// Remove deletes an item locally and on the server. A not-found from the
// server means the item was already gone, which is the desired state.
func (c *Collection[T]) Remove(ctx context.Context, id Identity, itemID string) error {
	key := c.def.CacheKey(id)

	if _, err := c.Load(ctx, id); err != nil {
		return err
	}
	c.drop(key, itemID)

	if id.Guest() || IsLocalID(itemID) {
		return nil
	}

	if err := c.remote.Delete(ctx, id, itemID); err != nil && !isNotFound(err) {
		c.setFailed(true)
	}
	return nil
}

// Flush pushes any items still carrying local ids. Called after coming
// back online or after sign-in.
func (c *Collection[T]) Flush(ctx context.Context, id Identity) error {
	if id.Guest() {
		return nil
	}
	key := c.def.CacheKey(id)

	c.mu.Lock()
	pending := make([]T, 0)
	for _, item := range c.items[key] {
		if IsLocalID(c.def.ID(item)) {
			pending = append(pending, item)
		}
	}
	c.mu.Unlock()

	var firstErr error
	for _, item := range pending {
		localID := c.def.ID(item)
		created, err := c.remote.Create(ctx, id, item)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.replace(key, localID, created)
	}

	c.setFailed(firstErr != nil)
	return firstErr
}

// Invalidate drops the identity's items from memory and cache.
func (c *Collection[T]) Invalidate(id Identity) {
	key := c.def.CacheKey(id)
	c.mu.Lock()
	delete(c.items, key)
	delete(c.loaded, key)
	c.failed = false
	c.mu.Unlock()
	c.cache.Delete(key)
}

func (c *Collection[T]) find(key, itemID string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items[key] {
		if c.def.ID(item) == itemID {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) insert(key string, item T) {
	c.mu.Lock()
	c.items[key] = append([]T{item}, c.items[key]...)
	snapshot := append([]T(nil), c.items[key]...)
	c.mu.Unlock()
	localcache.PutJSON(c.cache, key, snapshot)
}

func (c *Collection[T]) replace(key, itemID string, item T) {
	c.mu.Lock()
	for i := range c.items[key] {
		if c.def.ID(c.items[key][i]) == itemID {
			c.items[key][i] = item
			break
		}
	}
	snapshot := append([]T(nil), c.items[key]...)
	c.mu.Unlock()
	localcache.PutJSON(c.cache, key, snapshot)
}

func (c *Collection[T]) drop(key, itemID string) {
	c.mu.Lock()
	items := c.items[key]
	for i := range items {
		if c.def.ID(items[i]) == itemID {
			c.items[key] = append(items[:i:i], items[i+1:]...)
			break
		}
	}
	snapshot := append([]T(nil), c.items[key]...)
	c.mu.Unlock()
	localcache.PutJSON(c.cache, key, snapshot)
}
