package handler

import (
	"net/http"

	"github.com/msomdec/photocat/internal/websocket"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, gallery *GalleryHandler, events *EventsHandler, hub *websocket.Hub) {
	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("GET /api/photos", gallery.HandlePhotos)
	mux.HandleFunc("GET /api/photos/{index}", gallery.HandlePhotoByIndex)
	mux.HandleFunc("GET /api/photos/{id}/download", gallery.HandleDownload)
	mux.HandleFunc("GET /api/albums", gallery.HandleAlbums)
	mux.HandleFunc("GET /api/albums/{id}/cover", gallery.HandleAlbumCover)
	mux.HandleFunc("POST /api/scan", gallery.HandleScan)

	mux.HandleFunc("GET /events", events.HandleEvents)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(hub, w, r)
	})
}
