package memory

import (
	"context"
	"fmt"
	"mealtrack/pkg/domain"
	"time"

	"github.com/google/uuid"
)

// Event is the typed change notification raised by a Collection. Added
// carries a copy of the caller's item as passed to SaveItem, so its references
// are not rebound to stored instances; Modified carries a copy of the merged
// stored instance and Deleted a copy of the item passed to Remove.
type Event[T any] struct {
	Action domain.Action
	Item   T
}

// Collection owns the canonical instances of one entity type. Every value it
// hands out is a deep copy; stored instances never leave the package.
type Collection[T domain.Record[T]] struct {
	store    *Store
	entity   domain.EntityType
	items    []T
	index    map[uuid.UUID]T
	named    bool
	bind     func(T)
	adopt    func(T)
	isUsed   func(T) bool
	handlers observers[Event[T]]
}

func newCollection[T domain.Record[T]](store *Store, entity domain.EntityType, named bool) *Collection[T] {
	return &Collection[T]{
		store:  store,
		entity: entity,
		index:  make(map[uuid.UUID]T),
		named:  named,
	}
}

// Entity returns the entity type held by the collection.
func (c *Collection[T]) Entity() domain.EntityType { return c.entity }

// Len returns the number of stored items.
func (c *Collection[T]) Len() int { return len(c.items) }

// GetAll returns copies of all items in insertion order.
func (c *Collection[T]) GetAll() []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Clone())
	}
	return out
}

// Get returns a copy of the item with the given ID.
func (c *Collection[T]) Get(id uuid.UUID) (T, bool) {
	item, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return item.Clone(), true
}

// Find returns a copy of the first item matching pred. The predicate receives
// stored instances and must not modify them.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.items {
		if pred(item) {
			return item.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// FindAll returns copies of every item matching pred, in insertion order.
func (c *Collection[T]) FindAll(pred func(T) bool) []T {
	var out []T
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Contains reports whether an item with the candidate's ID is stored.
func (c *Collection[T]) Contains(candidate T) bool {
	var zero T
	if candidate == zero {
		return false
	}
	_, ok := c.index[candidate.EntityID()]
	return ok
}

// SaveItem inserts a copy of item when its ID is unknown, otherwise overwrites
// the stored instance's fields in place. The whole model is persisted before
// returning; a persistence failure is returned but the in-memory change stays.
func (c *Collection[T]) SaveItem(ctx context.Context, item T) error {
	var zero T
	if item == zero {
		return fmt.Errorf("save %s: %w", c.entity, ErrInvalidArgument)
	}
	start := time.Now()
	var event Event[T]
	if stored, ok := c.index[item.EntityID()]; ok {
		stored.CopyFrom(item)
		c.rebind(stored)
		event = Event[T]{Action: domain.ActionModified, Item: stored.Clone()}
	} else {
		stored = item.Clone()
		c.items = append(c.items, stored)
		c.index[stored.EntityID()] = stored
		c.rebind(stored)
		if c.adopt != nil {
			c.adopt(stored)
		}
		event = Event[T]{Action: domain.ActionAdded, Item: item.Clone()}
	}
	c.raise(event)
	err := c.store.persist(ctx, c.entity, event.Action)
	c.store.observe(ctx, string(c.entity)+".save", err == nil, time.Since(start))
	return err
}

// Remove deletes the item with the same ID. Removing an unknown item is a
// no-op and does not touch the backing store.
func (c *Collection[T]) Remove(ctx context.Context, item T) error {
	var zero T
	if item == zero {
		return fmt.Errorf("remove %s: %w", c.entity, ErrInvalidArgument)
	}
	id := item.EntityID()
	if _, ok := c.index[id]; !ok {
		return nil
	}
	start := time.Now()
	delete(c.index, id)
	for i, stored := range c.items {
		if stored.EntityID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	c.raise(Event[T]{Action: domain.ActionDeleted, Item: item.Clone()})
	err := c.store.persist(ctx, c.entity, domain.ActionDeleted)
	c.store.observe(ctx, string(c.entity)+".remove", err == nil, time.Since(start))
	return err
}

// NameIsDuplicate reports whether a different stored item carries the same
// name. Collections without a uniqueness constraint always report false.
func (c *Collection[T]) NameIsDuplicate(candidate T) bool {
	var zero T
	if !c.named || candidate == zero {
		return false
	}
	for _, item := range c.items {
		if item.EntityID() != candidate.EntityID() && item.EntityName() == candidate.EntityName() {
			return true
		}
	}
	return false
}

// ItemIsUsed reports whether other records reference candidate. The result is
// advisory; Remove does not consult it.
func (c *Collection[T]) ItemIsUsed(candidate T) bool {
	var zero T
	if c.isUsed == nil || candidate == zero {
		return false
	}
	return c.isUsed(candidate)
}

// Subscribe registers fn for this collection's change events and returns a
// function that removes the registration.
func (c *Collection[T]) Subscribe(fn func(Event[T])) func() {
	return c.handlers.add(fn)
}

func (c *Collection[T]) raise(event Event[T]) {
	c.handlers.notify(event)
	c.store.publish(domain.Change{Entity: c.entity, Action: event.Action, Item: event.Item})
}

func (c *Collection[T]) rebind(item T) {
	if c.bind != nil {
		c.bind(item)
	}
}

// canonical returns the stored instance sharing ref's ID, or the zero value.
func (c *Collection[T]) canonical(ref T) T {
	var zero T
	if ref == zero {
		return zero
	}
	return c.index[ref.EntityID()]
}

func (c *Collection[T]) anyMatch(pred func(T) bool) bool {
	for _, item := range c.items {
		if pred(item) {
			return true
		}
	}
	return false
}

func (c *Collection[T]) load(items []T) {
	c.items = make([]T, 0, len(items))
	c.index = make(map[uuid.UUID]T, len(items))
	var zero T
	for _, item := range items {
		if item == zero {
			continue
		}
		if _, dup := c.index[item.EntityID()]; dup {
			continue
		}
		c.items = append(c.items, item)
		c.index[item.EntityID()] = item
	}
}

func (c *Collection[T]) stored() []T {
	return append([]T(nil), c.items...)
}
