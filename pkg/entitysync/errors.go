package entitysync

import "errors"

// ErrItemNotFound is returned when a collection operation names an item
// id that is in neither local state nor the cache.
var ErrItemNotFound = errors.New("item not found")
