package service

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/msomdec/photocat/internal/domain"
)

const (
	thumbMaxSize     = 320
	thumbJPEGQuality = 85
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Scanner discovers photo files under the library path and feeds them into
// the gallery. New files get a uuid id and a thumbnail; files that have
// disappeared since the last scan are pruned from the catalog.
type Scanner struct {
	gallery     *Gallery
	libraryPath string
	thumbPath   string
}

// NewScanner creates a scanner over the given library and thumbnail dirs.
func NewScanner(gallery *Gallery, libraryPath, thumbPath string) *Scanner {
	return &Scanner{gallery: gallery, libraryPath: libraryPath, thumbPath: thumbPath}
}

// Scan walks the library once and reconciles the catalog with what it
// finds. A failed thumbnail only costs that photo its thumbnail; a failed
// stat skips the file until the next scan.
func (s *Scanner) Scan(ctx context.Context) (added, removed int, err error) {
	if err := os.MkdirAll(s.thumbPath, 0o755); err != nil {
		return 0, 0, fmt.Errorf("ensure thumbnail dir: %w", err)
	}

	known := make(map[string]bool)
	for _, p := range s.gallery.AllPhotos() {
		known[p.FullPath] = true
	}

	present := make(map[string]bool)
	var discovered []domain.Photo

	walkErr := filepath.WalkDir(s.libraryPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !imageExts[ext] {
			return nil
		}
		present[path] = true
		if known[path] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("stat photo", "path", path, "error", err)
			return nil
		}

		p := domain.Photo{
			ID:        uuid.NewString(),
			Basename:  filepath.Base(path),
			Ext:       strings.TrimPrefix(ext, "."),
			FullPath:  path,
			Size:      info.Size(),
			Birthtime: info.ModTime(),
		}
		if thumb, err := s.makeThumbnail(path, p.ID); err != nil {
			slog.Warn("thumbnail photo", "path", path, "error", err)
		} else {
			p.ThumbPath = thumb
		}
		discovered = append(discovered, p)
		return nil
	})
	if walkErr != nil {
		return 0, 0, fmt.Errorf("walk library: %w", walkErr)
	}

	added, removed = s.gallery.ApplyScan(discovered, present)
	if added > 0 || removed > 0 {
		slog.Info("library scan", "added", added, "removed", removed)
	}
	return added, removed, nil
}

func (s *Scanner) makeThumbnail(path, id string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	thumb := resize.Thumbnail(thumbMaxSize, thumbMaxSize, img, resize.Lanczos3)

	out := filepath.Join(s.thumbPath, id+".jpg")
	w, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	defer w.Close()

	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("encode: %w", err)
	}
	return out, nil
}
