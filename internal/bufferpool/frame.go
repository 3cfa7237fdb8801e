package bufferpool

import (
	"sync"

	"github.com/arrowkv/stoat/internal/storage"
)

// frame is the in-memory cell backing one slot of the pool's fixed frame
// vector: the byte buffer, the page it currently caches (if any), the dirty
// flag, and the pin count. frame.id == storage.NoPage means the frame is
// free.
//
// Two locks guard a frame: bk guards the small bookkeeping fields (id,
// dirty, pinCount) that the pool inspects to make eviction decisions; rw
// guards the PAGE_SIZE-byte buffer itself so AccessData callbacks never
// need to hold the pool mutex. Per §5, the pool mutex is held across most
// frame bookkeeping mutation anyway, but bk lets a Page handle answer
// IsDirty/PinCount/ID without reaching back into the pool.
type frame struct {
	bk       sync.Mutex
	id       storage.PageId
	dirty    bool
	pinCount int

	rw   sync.RWMutex
	data storage.PageData
}

func newFrame() *frame {
	return &frame{id: storage.NoPage}
}

// reset clears the page id, zeroes the buffer, and clears dirty. It does
// NOT touch the pin count: resetting a frame is about detaching it from a
// page identity, not about who still holds a handle to it.
func (f *frame) reset() {
	f.bk.Lock()
	f.id = storage.NoPage
	f.dirty = false
	f.bk.Unlock()

	f.rw.Lock()
	for i := range f.data {
		f.data[i] = 0
	}
	f.rw.Unlock()
}

func (f *frame) setPageID(id storage.PageId) {
	f.bk.Lock()
	defer f.bk.Unlock()
	f.id = id
}

func (f *frame) pageID() storage.PageId {
	f.bk.Lock()
	defer f.bk.Unlock()
	return f.id
}

func (f *frame) pin() {
	f.bk.Lock()
	defer f.bk.Unlock()
	f.pinCount++
}

// unpin decrements the pin count and returns the count after decrementing.
// It must not be called when the pin count is already zero.
func (f *frame) unpin() int {
	f.bk.Lock()
	defer f.bk.Unlock()
	if f.pinCount > 0 {
		f.pinCount--
	}
	return f.pinCount
}

func (f *frame) pins() int {
	f.bk.Lock()
	defer f.bk.Unlock()
	return f.pinCount
}

func (f *frame) isDirty() bool {
	f.bk.Lock()
	defer f.bk.Unlock()
	return f.dirty
}

// markDirty ORs dirty into the frame's flag: true sticks.
func (f *frame) markDirty(dirty bool) {
	if !dirty {
		return
	}
	f.bk.Lock()
	f.dirty = true
	f.bk.Unlock()
}

func (f *frame) clearDirty() {
	f.bk.Lock()
	f.dirty = false
	f.bk.Unlock()
}

func (f *frame) snapshot() storage.PageData {
	f.rw.RLock()
	defer f.rw.RUnlock()
	return f.data
}

func (f *frame) load(d *storage.PageData) {
	f.rw.Lock()
	defer f.rw.Unlock()
	f.data = *d
}

// Page is a cheap-to-clone handle to a single frame's protected state.
// Multiple Page values referring to the same frame observe the same state.
type Page struct {
	id storage.PageId
	f  *frame
}

// ID returns the PageId this handle was fetched/allocated for.
func (p Page) ID() storage.PageId {
	return p.id
}

// AccessData invokes fn with a mutable view of the PAGE_SIZE-byte buffer
// under the frame's exclusive lock.
func (p Page) AccessData(fn func(buf *storage.PageData)) {
	p.f.rw.Lock()
	defer p.f.rw.Unlock()
	fn(&p.f.data)
}

// IsDirty reports whether the frame differs from its on-disk contents.
func (p Page) IsDirty() bool {
	return p.f.isDirty()
}

// PinCount returns the current pin count of the backing frame.
func (p Page) PinCount() int {
	return p.f.pins()
}
