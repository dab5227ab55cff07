// Package uploads persists uploaded files under collision-free names.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidFilename is returned when a filename has no usable base name.
var ErrInvalidFilename = errors.New("invalid filename")

// Dir stores files in a single flat directory. Stored files are never
// removed.
type Dir struct {
	path string
}

// New returns a Dir rooted at path, creating it if absent.
func New(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// StoredName returns the on-disk name for filename: a fresh uuid, an
// underscore, then the base name of filename.
func StoredName(filename string) (string, error) {
	// Some clients send full Windows paths.
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(filename, `\`, "/")))
	if base == "/" || base == "." || base == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return uuid.NewString() + "_" + base, nil
}

// Save writes r to a new file named after filename and returns its path.
// Directory components in filename are discarded.
func (d *Dir) Save(filename string, r io.Reader) (string, error) {
	name, err := StoredName(filename)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.path, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	BytesStored.Add(float64(n))
	FilesStored.Inc()
	return path, nil
}
