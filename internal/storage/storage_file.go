package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dslf/internal/domain/models"
	"dslf/internal/repository"
)

// ReadEntries parses the configuration file at path.
// Parse errors are returned unwrapped so repository.Errors can list them.
func ReadEntries(path string) ([]models.RouteEntry, error) {
	file, err := OpenFileAsReader(path)
	if err != nil {
		return nil, err
	}
	defer ReadCloserClose(file)

	return repository.Parse(file)
}

// LoadRouteTable reads and parses the configuration at path and builds the route table.
// Any configuration error yields no table.
func LoadRouteTable(path string) (*RouteTable, error) {
	entries, err := ReadEntries(path)
	if err != nil {
		return nil, err
	}
	return NewRouteTable(entries)
}

// OpenFileAsReader opens a configuration file for reading.
func OpenFileAsReader(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error open file %s: %w", path, err)
	}
	return file, nil
}

// ReadCloserClose closes the ReadCloser.
func ReadCloserClose(rc io.ReadCloser) {
	_ = rc.Close()
}

// WriteFileAtomic writes data to a temporary file next to path and renames it over path.
// A failure at any step leaves an existing file at path untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
