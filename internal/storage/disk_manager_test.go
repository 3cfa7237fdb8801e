package storage

import (
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskManagerSparseRead(t *testing.T) {
	dir := t.TempDir()
	dm, err := Open(filepath.Join(dir, "segment"))
	require.NoError(t, err)
	defer dm.Close()

	var buf PageData
	require.NoError(t, dm.ReadPage(10, &buf))
	for i, b := range buf {
		assert.Equalf(t, byte(0), b, "byte %d not zero-filled", i)
	}
}

func TestDiskManagerWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dm, err := Open(filepath.Join(dir, "segment"))
	require.NoError(t, err)
	defer dm.Close()

	var want PageData
	rand.New(rand.NewSource(1)).Read(want[:])

	require.NoError(t, dm.WritePage(3, &want))

	var got PageData
	require.NoError(t, dm.ReadPage(3, &got))
	assert.Equal(t, want, got)
}

func TestDiskManagerConcurrentReadWrite(t *testing.T) {
	dir := t.TempDir()
	dm, err := Open(filepath.Join(dir, "segment"))
	require.NoError(t, err)
	defer dm.Close()

	var pageA, pageB PageData
	rand.New(rand.NewSource(11)).Read(pageA[:])
	rand.New(rand.NewSource(22)).Read(pageB[:])

	var wg sync.WaitGroup
	wg.Add(2)

	var gotA, gotB PageData
	var errA, errB error

	go func() {
		defer wg.Done()
		if err := dm.WritePage(1, &pageA); err != nil {
			errA = err
			return
		}
		errA = dm.ReadPage(1, &gotA)
	}()

	go func() {
		defer wg.Done()
		if err := dm.WritePage(2, &pageB); err != nil {
			errB = err
			return
		}
		errB = dm.ReadPage(2, &gotB)
	}()

	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, pageA, gotA)
	assert.Equal(t, pageB, gotB)
}
