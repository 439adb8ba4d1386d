// Package documents stores uploaded book documents on the local filesystem.
//
// Handles are opaque filenames inside the store directory. Replacing a
// book's document is a three-step sequence owned by the caller: store the
// new file, commit the new handle on the book record, then remove the old
// file. Readers that resolved the old handle before the commit keep a valid
// open file, so there is never a window where neither document is readable.
package documents

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists documents under a single directory.
type Store struct {
	dir string
}

// NewStore creates the document store at the given directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the document to the store and returns its handle. The write
// goes through a temp file and an atomic rename so a partially written
// document is never visible under a handle.
func (s *Store) Save(src io.Reader) (string, error) {
	handle := fmt.Sprintf("doc_%s.pdf", uuid.New().String())

	tmp, err := os.CreateTemp(s.dir, "upload_tmp_")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close document: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, handle)); err != nil {
		return "", fmt.Errorf("commit document: %w", err)
	}
	return handle, nil
}

// Open resolves a handle to a readable file and its size.
func (s *Store) Open(handle string) (io.ReadSeekCloser, int64, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open document: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat document: %w", err)
	}

	return f, info.Size(), nil
}

// Remove deletes the document behind the handle. Missing files are not an
// error: a crashed earlier replacement may have removed it already.
func (s *Store) Remove(handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

// resolve validates the handle and maps it to a path inside the store.
func (s *Store) resolve(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, "/\\") || strings.Contains(handle, "..") {
		return "", fmt.Errorf("invalid document handle")
	}
	return filepath.Join(s.dir, handle), nil
}
