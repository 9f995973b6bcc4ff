// Package reconcile implements the grid save protocol: the caller tracks
// edited rows in a DirtySet, a Saver validates and sends only those rows, and
// the server applies the batch with ApplyBatch.
package reconcile

import (
	"sync"

	id "examreg/pkg/domain"
)

// Key identifies a grid row. Record rows set ApplicationID and RecordID,
// contact rows set ApplicationID only and user rows set AccountID only.
type Key struct {
	ApplicationID id.ApplicationID
	RecordID      id.RecordID
	AccountID     id.AccountID
}

func (k Key) String() string {
	switch {
	case !k.AccountID.IsNil():
		return k.AccountID.String()
	case !k.RecordID.IsNil():
		return k.ApplicationID.String() + "/" + k.RecordID.String()
	default:
		return k.ApplicationID.String()
	}
}

// DirtySet is the set of rows edited since their last successful save. The
// zero value is ready to use and safe for concurrent use, so edits can keep
// marking rows while a save is in flight.
type DirtySet struct {
	mu   sync.Mutex
	keys map[Key]struct{}
}

func NewDirtySet() *DirtySet {
	return &DirtySet{}
}

// Mark records an edit of the row.
func (d *DirtySet) Mark(k Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys == nil {
		d.keys = make(map[Key]struct{})
	}
	d.keys[k] = struct{}{}
}

func (d *DirtySet) Has(k Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.keys[k]
	return ok
}

// Keys returns a snapshot of the dirty keys in no particular order.
func (d *DirtySet) Keys() []Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Key, 0, len(d.keys))
	for k := range d.keys {
		out = append(out, k)
	}
	return out
}

// Clear removes exactly the given keys.
func (d *DirtySet) Clear(keys []Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		delete(d.keys, k)
	}
}

func (d *DirtySet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.keys)
}
