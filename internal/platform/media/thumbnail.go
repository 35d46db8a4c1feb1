// Package media stores resized thumbnails of recipe images.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// DefaultWidth is the thumbnail width when none is configured.
const DefaultWidth = 800

// Downloader fetches raw image bytes.
type Downloader interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

// Thumbnailer downloads recipe images and writes resized JPEG copies.
type Thumbnailer struct {
	Downloader Downloader
	Dir        string
	Width      uint
}

// NewThumbnailer creates a Thumbnailer writing into dir.
func NewThumbnailer(d Downloader, dir string, width uint) *Thumbnailer {
	if width == 0 {
		width = DefaultWidth
	}
	return &Thumbnailer{Downloader: d, Dir: dir, Width: width}
}

// Save downloads imageURL and stores it as <dir>/<id>.jpg, returning the path.
func (t *Thumbnailer) Save(ctx context.Context, id, imageURL string) (string, error) {
	data, _, err := t.Downloader.FetchBytes(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	return t.write(id, data)
}

func (t *Thumbnailer) write(id string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Never upscale.
	if uint(img.Bounds().Dx()) > t.Width {
		img = resize.Resize(t.Width, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	imagePath := filepath.Join(t.Dir, filepath.Base(id)+".jpg")
	out, err := os.Create(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return imagePath, nil
}
