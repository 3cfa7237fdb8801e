package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var logDebugPrefix = "diskmanager: "

// DiskManager wraps a single flat file used as an un-headered array of
// PageSize-byte slots at offsets PageId*PageSize. Reads past end-of-file are
// legal and return zero-filled bytes; writes past end-of-file extend the
// file.
//
// Concurrency: reads may proceed in parallel; writes are serialized with
// respect to each other and to reads via an RWMutex. The positional
// ReadAt/WriteAt primitives are used throughout so no shared file cursor is
// ever relied upon.
type DiskManager struct {
	mu   sync.RWMutex
	file *os.File
	path string
}

// Open opens the file at path for read/write, creating it if absent.
func Open(path string) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diskmanager: open %s: %w", path, err)
	}
	return &DiskManager{file: f, path: path}, nil
}

// Close closes the underlying file handle.
func (d *DiskManager) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file.Close()
}

// ReadPage reads exactly PageSize bytes from pageId*PageSize into buf.
// Any suffix of buf not filled because the offset is past end-of-file is
// zero-filled; no error is raised for reading an unwritten page.
func (d *DiskManager) ReadPage(id PageId, buf *PageData) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	slog.Debug(logDebugPrefix+"read", "page_id", id)

	off := int64(id) * int64(PageSize)
	n, err := d.file.ReadAt(buf[:], off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("diskmanager: read page %d: %w", id, err)
	}
	for i := n; i < PageSize; i++ {
		buf[i] = 0
	}
	return nil
}

// WritePage writes exactly PageSize bytes from buf at pageId*PageSize and
// flushes to the OS. Writes past current end-of-file extend the file.
func (d *DiskManager) WritePage(id PageId, buf *PageData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	slog.Debug(logDebugPrefix+"write", "page_id", id)

	off := int64(id) * int64(PageSize)
	n, err := d.file.WriteAt(buf[:], off)
	if err != nil {
		return fmt.Errorf("diskmanager: write page %d: %w", id, err)
	}
	if n != PageSize {
		return fmt.Errorf("diskmanager: write page %d: %w", id, io.ErrShortWrite)
	}
	return d.file.Sync()
}

// Path returns the backing file path, mostly useful for diagnostics.
func (d *DiskManager) Path() string {
	return d.path
}
