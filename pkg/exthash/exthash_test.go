package exthash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestScenarioC inserts a known key sequence with a bucket limit of 3 and
// checks every key is retrievable both immediately after its own insert
// and after the full sequence has been inserted.
func TestScenarioC(t *testing.T) {
	keys := []uint32{16, 4, 6, 22, 24, 10, 31, 7, 9, 20, 26}

	h := New(3)
	for _, k := range keys {
		h.Put(k, k)
		assert.Equal(t, []uint32{k}, h.Get(k), "key %d should be retrievable immediately after insert", k)
	}

	for _, k := range keys {
		assert.Equal(t, []uint32{k}, h.Get(k), "key %d should be retrievable after all inserts", k)
	}
}

func TestDuplicateKeysPreserveInsertionOrder(t *testing.T) {
	h := New(4)
	h.Put(5, 100)
	h.Put(5, 200)
	h.Put(5, 300)
	assert.Equal(t, []uint32{100, 200, 300}, h.Get(5))
}

func TestGetMissingKeyReturnsEmpty(t *testing.T) {
	h := New(4)
	h.Put(1, 1)
	assert.Empty(t, h.Get(2))
}

// checkDirectoryInvariant verifies that for every slot i, the bucket's
// local depth d and the low d bits of every key in that bucket equal
// i&((1<<d)-1).
func checkDirectoryInvariant(t *testing.T, h *HashTable) {
	t.Helper()
	for i := 0; i < h.DirSize(); i++ {
		b := h.dir[i]
		d := b.depth
		want := mask(uint32(i), d)
		for _, tup := range b.tuples {
			assert.Equal(t, want, mask(tup.key, d), "slot %d bucket depth %d key %d", i, d, tup.key)
		}
		assert.LessOrEqual(t, d, h.GlobalDepth())
	}
}

func TestDirectoryInvariantHoldsUnderLoad(t *testing.T) {
	h := New(2)
	for k := uint32(0); k < 500; k++ {
		h.Put(k*2654435761, k)
		checkDirectoryInvariant(t, h)
	}
}

func TestAllInsertedKeysRetrievable(t *testing.T) {
	h := New(2)
	n := 1000
	for k := uint32(0); k < uint32(n); k++ {
		h.Put(k, k*10)
	}
	for k := uint32(0); k < uint32(n); k++ {
		assert.Equal(t, []uint32{k * 10}, h.Get(k))
	}
}

func TestSplitAffectsExactlyTwoSlots(t *testing.T) {
	h := New(1)
	// Force a split by inserting two distinct keys that land in the same
	// slot at depth 1 (even keys both hash to slot 0 when D=1).
	before := make([]*bucket, h.DirSize())
	copy(before, h.dir)

	h.Put(0, 0)
	h.Put(2, 2) // triggers a split since bucketLimit=1

	changed := []int{}
	maxLen := h.DirSize()
	if len(before) > maxLen {
		maxLen = len(before)
	}
	for i := 0; i < len(before) && i < h.DirSize(); i++ {
		if before[i] != h.dir[i] {
			changed = append(changed, i)
		}
	}
	assert.NotEmpty(t, changed)
}
