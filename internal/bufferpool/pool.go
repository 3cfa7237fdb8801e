// Package bufferpool implements a fixed-capacity, thread-safe cache of
// fixed-size pages backed by a single flat file (internal/storage.DiskManager),
// with pinning, write-back of dirty pages, and LRU eviction over the pool
// of frames.
package bufferpool

import (
	"log/slog"
	"sync"

	"github.com/arrowkv/stoat/internal/storage"
)

var logDebugPrefix = "bufferpool: "

// DefaultCapacity is used when a non-positive pool_size is requested.
const DefaultCapacity = 16

// Pool is a fixed-size buffer pool over one DiskManager.
//
// Its entire mutable bookkeeping (frames, page table, free list, LRU list
// reference, next-id counter) is guarded by mu, held for the duration of
// each public operation. Per-frame data is guarded independently (see
// frame.go) so AccessData callbacks never need mu.
type Pool struct {
	mu sync.Mutex

	disk *storage.DiskManager

	frames   []*frame
	pageTbl  map[storage.PageId]storage.FrameId
	freeList []storage.FrameId
	lru      *lruList

	nextPageID storage.PageId
	incFn      storage.IncFn
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithNextPageID sets the starting value of the monotonic PageId counter.
func WithNextPageID(id storage.PageId) Option {
	return func(p *Pool) { p.nextPageID = id }
}

// WithIncFn overrides the successor function used to compute the next
// PageId. The default is storage.DefaultIncFn (id -> id+1).
func WithIncFn(fn storage.IncFn) Option {
	return func(p *Pool) { p.incFn = fn }
}

// NewPool creates a new buffer pool of the given capacity (pool_size) over
// disk. If capacity <= 0, DefaultCapacity is used.
func NewPool(disk *storage.DiskManager, capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	p := &Pool{
		disk:     disk,
		frames:   make([]*frame, capacity),
		pageTbl:  make(map[storage.PageId]storage.FrameId),
		freeList: make([]storage.FrameId, 0, capacity),
		lru:      newLRUList(),
		incFn:    storage.DefaultIncFn,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := 0; i < capacity; i++ {
		p.frames[i] = newFrame()
		p.freeList = append(p.freeList, storage.FrameId(i))
	}
	return p
}

// Capacity returns the fixed number of frames in the pool.
func (p *Pool) Capacity() int {
	return len(p.frames)
}

// NewPage allocates a fresh PageId, binds it to a frame, pins it, and
// returns a zeroed handle. Returns (Page{}, false, nil) if the pool has no
// evictable frame (pool exhaustion, not an error per §7).
func (p *Pool) NewPage() (Page, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok, err := p.findFreshFrameLocked()
	if err != nil {
		return Page{}, false, err
	}
	if !ok {
		slog.Debug(logDebugPrefix + "new_page: no fresh frame available")
		return Page{}, false, nil
	}

	id := p.nextPageID
	p.nextPageID = p.incFn(id)

	f := p.frames[fid]
	f.setPageID(id)
	p.pageTbl[id] = fid

	slog.Debug(logDebugPrefix+"new_page", "page_id", id, "frame_id", fid)
	return Page{id: id, f: f}, true, nil
}

// FetchPage returns a pinned handle to id, loading it from disk if it is
// not already resident. Returns (Page{}, false, nil) on pool exhaustion.
func (p *Pool) FetchPage(id storage.PageId) (Page, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fid, ok := p.pageTbl[id]; ok {
		f := p.frames[fid]
		p.lru.remove(fid)
		f.pin()
		slog.Debug(logDebugPrefix+"fetch_page: hit", "page_id", id, "frame_id", fid)
		return Page{id: id, f: f}, true, nil
	}

	fid, ok, err := p.findFreshFrameLocked()
	if err != nil {
		return Page{}, false, err
	}
	if !ok {
		slog.Debug(logDebugPrefix+"fetch_page: no fresh frame available", "page_id", id)
		return Page{}, false, nil
	}

	f := p.frames[fid]
	var buf storage.PageData
	if err := p.disk.ReadPage(id, &buf); err != nil {
		// Undo the frame we just pinned in findFreshFrameLocked so it is
		// not leaked as permanently pinned garbage.
		f.unpin()
		p.freeList = append(p.freeList, fid)
		return Page{}, false, err
	}
	f.load(&buf)
	f.setPageID(id)
	p.pageTbl[id] = fid

	slog.Debug(logDebugPrefix+"fetch_page: miss, loaded from disk", "page_id", id, "frame_id", fid)
	return Page{id: id, f: f}, true, nil
}

// UnpinPage decrements the pin count of id, ORs isDirty into its dirty
// flag, adds its frame to the LRU list if the pin count reaches zero, and
// flushes the page to disk if it is dirty (whatever the remaining pin
// count). Returns false if id is not resident or its pin count is already
// zero (a caller bug).
func (p *Pool) UnpinPage(id storage.PageId, isDirty bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[id]
	if !ok {
		return false, nil
	}
	f := p.frames[fid]
	if f.pins() == 0 {
		return false, nil
	}

	remaining := f.unpin()
	f.markDirty(isDirty)

	if remaining == 0 {
		p.lru.add(fid)
	}

	if f.isDirty() {
		buf := f.snapshot()
		if err := p.disk.WritePage(id, &buf); err != nil {
			return true, err
		}
		f.clearDirty()
	}

	slog.Debug(logDebugPrefix+"unpin_page", "page_id", id, "frame_id", fid, "remaining_pins", remaining)
	return true, nil
}

// FlushPage writes id back to disk if resident and dirty. Returns false if
// id is not resident.
func (p *Pool) FlushPage(id storage.PageId) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[id]
	if !ok {
		return false, nil
	}
	f := p.frames[fid]
	if !f.isDirty() {
		return true, nil
	}
	buf := f.snapshot()
	if err := p.disk.WritePage(id, &buf); err != nil {
		return true, err
	}
	f.clearDirty()
	return true, nil
}

// DeletePage removes id from the buffer pool (not from disk) if resident
// and unpinned: the frame is reset and pushed to the free list. Returns
// false if id is pinned or not resident.
func (p *Pool) DeletePage(id storage.PageId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTbl[id]
	if !ok {
		return false
	}
	f := p.frames[fid]
	if f.pins() != 0 {
		return false
	}

	p.lru.remove(fid)
	f.reset()
	delete(p.pageTbl, id)
	p.freeList = append(p.freeList, fid)
	return true
}

// findFreshFrameLocked obtains a pinned, vacant frame: first from the free
// list, then by evicting the LRU list's tail. The caller must hold p.mu.
func (p *Pool) findFreshFrameLocked() (storage.FrameId, bool, error) {
	if n := len(p.freeList); n > 0 {
		fid := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.frames[fid].pin()
		return fid, true, nil
	}

	fid, ok := p.lru.removeLast()
	if !ok {
		return 0, false, nil
	}

	f := p.frames[fid]
	if f.isDirty() {
		buf := f.snapshot()
		oldID := f.pageID()
		if err := p.disk.WritePage(oldID, &buf); err != nil {
			// The frame is still tracked in pageTbl; re-add it to the LRU
			// list (at the front, as add always does) so it is not lost,
			// and surface the error.
			p.lru.add(fid)
			return 0, false, err
		}
	}
	delete(p.pageTbl, f.pageID())
	f.reset()
	f.pin()
	return fid, true, nil
}
