package bufferpool

import (
	"container/list"
	"sync"

	"github.com/arrowkv/stoat/internal/storage"
)

// lruList is a thread-safe doubly-linked list of FrameIds representing the
// eviction candidate set: a frame is in the list iff it is currently
// unpinned and cached. A container/list wrapper with its own internal
// mutex, keyed on storage.FrameId and given O(1) membership tests via an
// auxiliary index.
type lruList struct {
	mu    sync.Mutex
	order *list.List
	index map[storage.FrameId]*list.Element
}

func newLRUList() *lruList {
	return &lruList{
		order: list.New(),
		index: make(map[storage.FrameId]*list.Element),
	}
}

// add inserts id at the front of the list if it is not already present.
// Re-adding an already-present id is a no-op: it does not move to front.
func (l *lruList) add(id storage.FrameId) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[id]; ok {
		return
	}
	l.index[id] = l.order.PushFront(id)
}

// remove detaches id from the list if present; no-op otherwise.
func (l *lruList) remove(id storage.FrameId) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem, ok := l.index[id]
	if !ok {
		return
	}
	l.order.Remove(elem)
	delete(l.index, id)
}

// removeLast detaches and returns the tail of the list (the least recently
// unpinned frame), or (0, false) if the list is empty.
func (l *lruList) removeLast() (storage.FrameId, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	back := l.order.Back()
	if back == nil {
		return 0, false
	}
	id := back.Value.(storage.FrameId)
	l.order.Remove(back)
	delete(l.index, id)
	return id, true
}

func (l *lruList) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}
