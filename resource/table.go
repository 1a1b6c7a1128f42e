package resource

import "sync"

// Table is an in-memory handle table with type checking, free-list
// handle recycling, and lifecycle observers. Safe for concurrent use.
type Table struct {
	mu        sync.RWMutex
	entries   []entry
	freeList  []Handle
	observers []Observer
	closed    bool
}

type entry struct {
	value  any
	typeID uint32
	valid  bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert adds a value and returns its handle, or 0 if the table is
// closed.
func (t *Table) Insert(typeID uint32, value any) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	e := entry{typeID: typeID, value: value, valid: true}

	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, TypeID: typeID, Value: value})
	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(handle)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typeID uint32) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(handle)
	if !ok || e.typeID != typeID {
		return nil, false
	}
	return e.value, true
}

// TypeID returns the type ID recorded for a handle.
func (t *Table) TypeID(handle Handle) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(handle)
	if !ok {
		return 0, false
	}
	return e.typeID, true
}

// lookup must be called with the lock held.
func (t *Table) lookup(handle Handle) (*entry, bool) {
	if handle == 0 || int(handle) > len(t.entries) {
		return nil, false
	}
	e := &t.entries[handle-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

// Remove drops a resource, invoking its Dropper, and returns
// (value, true) if found.
func (t *Table) Remove(handle Handle) (any, bool) {
	t.mu.Lock()
	e, ok := t.lookup(handle)
	if !ok {
		t.mu.Unlock()
		return nil, false
	}

	value := e.value
	typeID := e.typeID
	e.valid = false
	e.value = nil
	t.freeList = append(t.freeList, handle)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: handle, TypeID: typeID, Value: value})
	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all active resources.
func (t *Table) Each(fn func(Handle, uint32, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.typeID, e.value) {
				break
			}
		}
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	var dropped []any
	for i := range t.entries {
		if t.entries[i].valid {
			dropped = append(dropped, t.entries[i].value)
			t.entries[i].valid = false
			t.entries[i].value = nil
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range dropped {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.mu.RLock()
	obs := t.observers
	t.mu.RUnlock()
	for _, o := range obs {
		o.OnResourceEvent(e)
	}
}
