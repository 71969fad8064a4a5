package encoding

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	kind, err := StatPath(dir)
	require.NoError(t, err)
	assert.Equal(t, PathDir, kind)

	kind, err = StatPath(file)
	require.NoError(t, err)
	assert.Equal(t, PathOther, kind)

	kind, err = StatPath(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, PathMissing, kind)

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	require.NoError(t, EnsureParentDir(path))
	assert.True(t, DirExists(filepath.Dir(path)))
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "description")

	require.NoError(t, WriteText(path, "first version, rather long", 0o644))
	require.NoError(t, WriteText(path, "short", 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(data))
}

func TestWriteText_MissingDir(t *testing.T) {
	err := WriteText(filepath.Join(t.TempDir(), "nope", "file"), "x", 0o644)
	require.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}

	data, err := ToJSON(item{Name: "a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a"}`, string(data))

	got, err := ParseJSON[item](data)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	_, err = ParseJSON[item]([]byte("{"))
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, item{Name: "b"}))
	assert.Equal(t, "{\n  \"name\": \"b\"\n}\n", buf.String())
}
