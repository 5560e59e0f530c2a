// Package resource implements the handle table that backs every host-owned
// value a plugin can refer to. Plugins only ever see integer handles; the
// values themselves never cross the plugin boundary.
package resource

import (
	"errors"
	"fmt"
	"sync"
)

// Handle is an opaque reference to a slot in a Table. Zero is never issued.
type Handle uint32

// ErrNotFound is matched by every lookup of an unknown or disposed handle.
var ErrNotFound = errors.New("resource not found")

// NotFoundError reports the handle that failed to resolve.
type NotFoundError struct {
	Table  string
	Handle Handle
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: handle %d: %v", e.Table, e.Handle, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type slot[T any] struct {
	value T
	live  bool
}

// Table is an arena mapping handles to values. Deleted slots are reused
// through a free list; a handle stays valid until it is explicitly deleted.
type Table[T any] struct {
	name  string
	slots []slot[T]
	free  []int
	mu    sync.Mutex
}

// NewTable creates an empty table. The name only appears in error messages.
func NewTable[T any](name string) *Table[T] {
	return &Table[T]{name: name}
}

// Insert stores v and returns its handle.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx] = slot[T]{value: v, live: true}
		return Handle(idx + 1)
	}
	t.slots = append(t.slots, slot[T]{value: v, live: true})
	return Handle(len(t.slots))
}

// Get returns a pointer to the value stored under h. The pointer is only
// valid until h is deleted.
func (t *Table[T]) Get(h Handle) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.index(h)
	if err != nil {
		return nil, err
	}
	return &t.slots[idx].value, nil
}

// GetMut is Get for callers that intend to modify the value in place.
func (t *Table[T]) GetMut(h Handle) (*T, error) {
	return t.Get(h)
}

// Delete removes h from the table and returns the value it held.
func (t *Table[T]) Delete(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	idx, err := t.index(h)
	if err != nil {
		return zero, err
	}
	v := t.slots[idx].value
	t.slots[idx] = slot[T]{}
	t.free = append(t.free, idx)
	return v, nil
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots) - len(t.free)
}

// index must be called with mu held.
func (t *Table[T]) index(h Handle) (int, error) {
	idx := int(h) - 1
	if h == 0 || idx >= len(t.slots) || !t.slots[idx].live {
		return 0, &NotFoundError{Table: t.name, Handle: h}
	}
	return idx, nil
}
