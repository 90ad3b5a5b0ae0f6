package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/photocat/internal/domain"
	"github.com/msomdec/photocat/internal/service"
)

// GalleryHandler serves the read-only query surface over the catalog.
type GalleryHandler struct {
	gallery *service.Gallery
	scanner *service.Scanner
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *service.Gallery, scanner *service.Scanner) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, scanner: scanner}
}

// PhotosResponse is the JSON shape of a photo query result.
type PhotosResponse struct {
	Status string         `json:"status"`
	Photos []domain.Photo `json:"photos"`
}

// HandlePhotos answers a filtered/sorted/paginated photo query.
// GET /api/photos?s=&qty=&album=&search=&orderBy=&orderDesc=
func (h *GalleryHandler) HandlePhotos(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	writeJSON(w, http.StatusOK, PhotosResponse{
		Status: "success",
		Photos: h.gallery.Photos(q),
	})
}

// HandlePhotoByIndex returns the single photo at the given position in the
// query result, or 404 when out of bounds.
// GET /api/photos/{index}
func (h *GalleryHandler) HandlePhotoByIndex(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	photo, err := h.gallery.PhotoByIndex(queryFromRequest(r), index)
	if err != nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

// HandleAlbums lists all albums.
// GET /api/albums
func (h *GalleryHandler) HandleAlbums(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"albums": h.gallery.Albums(),
	})
}

// HandleAlbumCover serves the album's cover thumbnail, falling back to the
// placeholder image rather than failing.
// GET /api/albums/{id}/cover
func (h *GalleryHandler) HandleAlbumCover(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.gallery.AlbumCover(r.PathValue("id")))
}

// HandleDownload serves the original photo file. The id may carry a file
// extension suffix, which the lookup strips.
// GET /api/photos/{id}/download
func (h *GalleryHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	path, err := h.gallery.PhotoPath(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		slog.Error("resolve photo path", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.ServeFile(w, r, path)
}

// HandleScan triggers a synchronous library rescan.
// POST /api/scan
func (h *GalleryHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	added, removed, err := h.scanner.Scan(r.Context())
	if err != nil {
		slog.Error("library scan", "error", err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"added":   added,
		"removed": removed,
	})
}

// queryFromRequest maps the query parameters onto a service.Query.
// Malformed pagination and sort values coerce to defaults, never errors.
func queryFromRequest(r *http.Request) service.Query {
	qv := r.URL.Query()

	start, err := strconv.Atoi(qv.Get("s"))
	if err != nil || start < 0 {
		start = 0
	}
	qty, err := strconv.Atoi(qv.Get("qty"))
	if err != nil || qty <= 0 {
		qty = service.DefaultPageSize
	}

	return service.Query{
		AlbumID:   qv.Get("album"),
		Search:    qv.Get("search"),
		OrderBy:   qv.Get("orderBy"),
		OrderDesc: qv.Get("orderDesc") == "1",
		Start:     start,
		Qty:       qty,
	}
}
