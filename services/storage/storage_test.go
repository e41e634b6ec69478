package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestLocalStore_SaveDelete(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media/")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "files/a/b.txt", strings.NewReader("hello")))

	data, err := os.ReadFile(filepath.Join(root, "files", "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "/media/files/a/b.txt", s.URL("files/a/b.txt"))

	require.NoError(t, s.Delete(ctx, "files/a/b.txt"))
	assert.ErrorIs(t, s.Delete(ctx, "files/a/b.txt"), ErrNotFound)
}

func TestLocalStore_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root, "/media/")

	require.NoError(t, s.Save(context.Background(), "../../escape.txt", strings.NewReader("x")))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestNewKey(t *testing.T) {
	a := NewKey("images", "Photo.PNG")
	b := NewKey("images", "Photo.PNG")

	assert.True(t, strings.HasPrefix(a, "images/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestDetect(t *testing.T) {
	mime, r, err := Detect(bytes.NewReader(pngPixel))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pngPixel, replayed)

	mime, _, err = Detect(strings.NewReader("plain words"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mime, "text/plain"))
}
