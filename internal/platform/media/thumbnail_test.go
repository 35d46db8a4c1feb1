package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDownloader serves fixed bytes.
type mockDownloader struct {
	data []byte
	err  error
}

func (m *mockDownloader) FetchBytes(ctx context.Context, url string) ([]byte, string, error) {
	return m.data, "image/png", m.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	return img
}

func TestSave_ResizesWideImages(t *testing.T) {
	dir := t.TempDir()
	th := NewThumbnailer(&mockDownloader{data: pngBytes(t, 400, 200)}, dir, 100)

	path, err := th.Save(context.Background(), "abc", "https://example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.jpg"), path)

	img := decodeFile(t, path)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestSave_KeepsSmallImages(t *testing.T) {
	dir := t.TempDir()
	th := NewThumbnailer(&mockDownloader{data: pngBytes(t, 40, 30)}, dir, 0)
	assert.Equal(t, uint(DefaultWidth), th.Width)

	path, err := th.Save(context.Background(), "../escape", "https://example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.jpg"), path)
	assert.Equal(t, 40, decodeFile(t, path).Bounds().Dx())
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewThumbnailer(&mockDownloader{err: errors.New("404")}, dir, 0).Save(context.Background(), "a", "u")
	assert.Error(t, err)

	_, err = NewThumbnailer(&mockDownloader{data: []byte("not an image")}, dir, 0).Save(context.Background(), "a", "u")
	assert.Error(t, err)
}
