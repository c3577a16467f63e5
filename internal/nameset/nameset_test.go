package nameset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"code.selman.me/uniqname/naming"
)

func TestLines(t *testing.T) {
	lines, err := Lines(strings.NewReader("Layer\r\n\nLayer 1\n  padded  \nlast"))
	assert.NilError(t, err)
	assert.DeepEqual(t, lines, []string{"Layer", "Layer 1", "  padded  ", "last"})
}

func TestLinesTooLong(t *testing.T) {
	_, err := Lines(strings.NewReader(strings.Repeat("x", maxLine+1)))
	assert.Assert(t, is.ErrorContains(err, "nameset: read"))
}

func TestRead(t *testing.T) {
	set, err := Read(strings.NewReader("a\nb\n"))
	assert.NilError(t, err)
	assert.DeepEqual(t, set, naming.NewNames("a", "b"))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	assert.NilError(t, os.WriteFile(path, []byte("Brush\nBrush 1\n"), 0o600))

	set := naming.NewNames("Layer")
	assert.NilError(t, ReadFile(set, path))
	assert.DeepEqual(t, set, naming.NewNames("Layer", "Brush", "Brush 1"))
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile(naming.NewNames(), "/nonexistent/names.txt")
	assert.Assert(t, is.ErrorContains(err, "nameset: open /nonexistent/names.txt"))
}
