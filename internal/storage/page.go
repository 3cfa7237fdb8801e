// Package storage holds the page-granular file I/O primitives that the
// buffer pool is built on: the fixed page size, the PageId/FrameId types,
// and the DiskManager.
package storage

// PageSize is the fixed length, in bytes, of every page. It is a
// compile-time constant of the build.
const PageSize = 4096

// PageId names a logical page in the backing file. Offsets into the file
// are computed as PageId * PageSize.
type PageId uint64

// FrameId indexes into the buffer pool's fixed-length frame vector.
type FrameId int

// NoPage is the sentinel PageId (the maximum value) used to signal "no
// page", distinct from the valid PageId 0.
const NoPage PageId = ^PageId(0)

// PageData is a fixed-size page buffer.
type PageData [PageSize]byte

// IncFn computes the successor PageId used to allocate new pages.
// The default, DefaultIncFn, is id -> id+1.
type IncFn func(PageId) PageId

// DefaultIncFn is the default successor function: id -> id + 1.
func DefaultIncFn(id PageId) PageId {
	return id + 1
}
