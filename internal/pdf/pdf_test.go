package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/pdf/pdftest"
)

func TestPageReader_Segments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.pdf")
	pdftest.Write(t, path, "The warranty lasts two years.", "Support is open on weekdays.")

	segments, err := NewPageReader().Segments(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Contains(t, segments[0], "warranty")
	assert.Contains(t, segments[1], "weekdays")
}

func TestPageReader_MissingFile(t *testing.T) {
	_, err := NewPageReader().Segments(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPageReader_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	_, err := NewPageReader().Segments(context.Background(), path)
	assert.Error(t, err)
}
