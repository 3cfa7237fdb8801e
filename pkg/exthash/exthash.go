// Package exthash implements an in-memory directory-based extendible hash
// table: a mutable multimap over uint32 keys that grows by bucket splits
// and, when needed, directory doubling, following the classical Fagin et
// al. algorithm, adapted from on-disk buckets to plain in-memory ones
// since the index here is kept entirely resident.
package exthash

// tuple is one (key, value) pair stored in a bucket, in insertion order.
type tuple struct {
	key   uint32
	value uint32
}

// bucket holds a local depth and an ordered run of tuples. Buckets are
// shared by reference from multiple directory slots when their local depth
// is less than the table's global depth.
type bucket struct {
	depth   int
	tuples  []tuple
}

func newBucket(depth int) *bucket {
	return &bucket{depth: depth}
}

// maxGlobalDepth saturates directory growth at 32 bits: at depth 32 idx()
// already uses every bit of the key (mask() returns k unchanged for
// d >= 32), so doubling past depth 32 is declined outright.
const maxGlobalDepth = 32

// mask returns the low d bits of k.
func mask(k uint32, d int) uint32 {
	if d >= 32 {
		return k
	}
	return k & ((uint32(1) << uint(d)) - 1)
}

// HashTable is a directory-based extendible hash table over uint32 keys.
// Duplicate keys are permitted; Get returns all values inserted under a key
// in insertion order.
type HashTable struct {
	globalDepth int
	dir         []*bucket
	bucketLimit int
}

// New creates a table with the given per-bucket tuple limit B. Global depth
// starts at 1 with both directory slots sharing a single empty bucket.
func New(bucketLimit int) *HashTable {
	if bucketLimit < 1 {
		bucketLimit = 1
	}
	// The shared bucket starts at local depth 0: both of the two initial
	// directory slots reference it, satisfying the invariant that a
	// depth-d bucket is referenced by exactly 2^(D-d) slots (2^(1-0) = 2).
	// It reaches local depth 1 on its first split, matching the
	// "two distinct buckets of local depth 1" alternative's observable
	// behavior exactly.
	b := newBucket(0)
	return &HashTable{
		globalDepth: 1,
		dir:         []*bucket{b, b},
		bucketLimit: bucketLimit,
	}
}

// idx computes the directory index for k: the low globalDepth bits of k,
// with no further hashing applied.
func (h *HashTable) idx(k uint32) uint32 {
	return mask(k, h.globalDepth)
}

// Put appends (k, v), splitting the target bucket and doubling the
// directory as needed.
func (h *HashTable) Put(k, v uint32) {
	i := h.idx(k)
	b := h.dir[i]

	if len(b.tuples) >= h.bucketLimit {
		if b.depth == h.globalDepth && h.globalDepth < maxGlobalDepth {
			h.grow()
			i = h.idx(k)
			b = h.dir[i]
		}
		if len(b.tuples) >= h.bucketLimit && b.depth < h.globalDepth {
			h.split(i)
			i = h.idx(k)
			b = h.dir[i]
		}
	}

	b.tuples = append(b.tuples, tuple{key: k, value: v})
}

// grow doubles the directory: the new size is 2^(D+1), each new slot j
// refers to the same bucket as old slot j&((1<<D)-1), then D is
// incremented.
func (h *HashTable) grow() {
	old := h.dir
	n := len(old)
	h.dir = make([]*bucket, n*2)
	copy(h.dir[:n], old)
	copy(h.dir[n:], old)
	h.globalDepth++
}

// split splits the bucket currently at slot i: local depth increments,
// tuples are partitioned by the new depth's mask, and the "split image"
// slot is installed with the new bucket. Other directory slots pointing
// at the pre-split bucket continue to point at whichever of the two
// post-split buckets their own low bits select.
//
// i itself may carry bits at positions >= newDepth (the bucket at i can
// lag the global depth by more than one level). The canonical slot for
// this bucket, and the image derived from it, must first be masked down
// to newDepth bits before use as a partition key or loop start; the raw i
// would point the patch loops at the wrong residue class whenever i has
// any such high bits set.
func (h *HashTable) split(i uint32) {
	old := h.dir[i]
	newDepth := old.depth + 1
	canonical := mask(i, newDepth)
	image := canonical ^ (uint32(1) << uint(newDepth-1))

	oldTuples := old.tuples

	kept := old
	kept.depth = newDepth
	kept.tuples = nil

	fresh := newBucket(newDepth)

	for _, tup := range oldTuples {
		if mask(tup.key, newDepth) == image {
			fresh.tuples = append(fresh.tuples, tup)
		} else {
			kept.tuples = append(kept.tuples, tup)
		}
	}

	keptIdx := canonical &^ (uint32(1) << uint(newDepth-1))
	span := uint32(1) << uint(newDepth)
	for j := keptIdx; j < uint32(len(h.dir)); j += span {
		h.dir[j] = kept
	}
	for j := image; j < uint32(len(h.dir)); j += span {
		h.dir[j] = fresh
	}
}

// Get returns the values associated with k, in insertion order.
func (h *HashTable) Get(k uint32) []uint32 {
	b := h.dir[h.idx(k)]
	var out []uint32
	for _, tup := range b.tuples {
		if tup.key == k {
			out = append(out, tup.value)
		}
	}
	return out
}

// GlobalDepth returns the current directory depth D.
func (h *HashTable) GlobalDepth() int {
	return h.globalDepth
}

// DirSize returns the current directory length, 2^D.
func (h *HashTable) DirSize() int {
	return len(h.dir)
}

// BucketDepth returns the local depth of the bucket at directory slot i.
func (h *HashTable) BucketDepth(i uint32) int {
	return h.dir[i].depth
}
