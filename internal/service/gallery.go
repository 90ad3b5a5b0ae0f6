package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/photocat/internal/domain"
)

// EventSink receives exactly one notification per successful catalog
// mutation. It decouples the gallery from whatever transport fans the
// event out to listeners.
type EventSink func(event string, payload any)

// DefaultPageSize is the photo query page size when none is given.
const DefaultPageSize = 25

// Sortable photo fields. Unknown or empty OrderBy values fall back to
// birthtime rather than erroring.
const (
	OrderByBirthtime = "birthtime"
	OrderByBasename  = "basename"
	OrderBySize      = "size"
)

// Query describes one pass over the photo index: sort, then conjunctive
// filters, then a pagination window.
type Query struct {
	AlbumID   string
	Search    string
	OrderBy   string
	OrderDesc bool
	Start     int
	Qty       int
}

// Gallery is the catalog index: the in-memory view over the photo and
// album collections. It is the only writer of both collections. Reads take
// the read lock; mutations take the write lock, so two concurrent album
// updates cannot lose each other's changes. Every mutation updates memory
// synchronously, schedules an asynchronous snapshot save, and emits one
// event through the sink on success.
type Gallery struct {
	mu     sync.RWMutex
	photos []domain.Photo
	albums []domain.Album

	store       domain.CatalogStore
	sink        EventSink
	placeholder string

	saveCh chan struct{}
}

// NewGallery creates a gallery over the given store. placeholderPath is
// the fallback album cover. Call Load before serving queries. The saver
// goroutine runs for the life of the process; saves are coalesced, and the
// latest snapshot always wins.
func NewGallery(store domain.CatalogStore, sink EventSink, placeholderPath string) *Gallery {
	g := &Gallery{
		store:       store,
		sink:        sink,
		placeholder: placeholderPath,
		saveCh:      make(chan struct{}, 1),
	}
	go g.saver()
	return g
}

// Load pulls both collections from the durable store into memory.
func (g *Gallery) Load(ctx context.Context) error {
	photos, albums, err := g.store.Load(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.photos = photos
	g.albums = albums
	g.mu.Unlock()
	return nil
}

// Photos runs the query pipeline and returns the requested page. An
// out-of-range start yields an empty slice, never an error.
func (g *Gallery) Photos(q Query) []domain.Photo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	photos := g.sortedFiltered(q)

	start := q.Start
	if start < 0 {
		start = 0
	}
	qty := q.Qty
	if qty <= 0 {
		qty = DefaultPageSize
	}
	if start >= len(photos) {
		return []domain.Photo{}
	}
	end := min(start+qty, len(photos))
	return photos[start:end]
}

// PhotoByIndex reruns the query pipeline without pagination and returns
// the element at index, or ErrPhotoNotFound when out of bounds.
func (g *Gallery) PhotoByIndex(q Query, index int) (domain.Photo, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	photos := g.sortedFiltered(q)
	if index < 0 || index >= len(photos) {
		return domain.Photo{}, domain.ErrPhotoNotFound
	}
	return photos[index], nil
}

// Albums returns a copy of the album collection in storage order.
func (g *Gallery) Albums() []domain.Album {
	g.mu.RLock()
	defer g.mu.RUnlock()

	albums := make([]domain.Album, len(g.albums))
	for i, a := range g.albums {
		albums[i] = a.Clone()
	}
	return albums
}

// AllPhotos returns a copy of the photo collection in storage order.
func (g *Gallery) AllPhotos() []domain.Photo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	photos := make([]domain.Photo, len(g.photos))
	copy(photos, g.photos)
	return photos
}

// AlbumCover returns the thumbnail path of the first photo in album order
// that has one. A missing album, an empty album, or an album whose members
// have no thumbnails yet all resolve to the placeholder, never an error.
func (g *Gallery) AlbumCover(albumID string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	a := g.albumByID(albumID)
	if a == nil {
		return g.placeholder
	}
	for _, id := range a.Photos {
		if p := g.photoByID(id); p != nil && p.ThumbPath != "" {
			return p.ThumbPath
		}
	}
	return g.placeholder
}

// PhotoPath resolves a photo id to its full file path. A file-extension
// suffix on the id (as sent by clients building download URLs) is
// stripped before lookup.
func (g *Gallery) PhotoPath(photoID string) (string, error) {
	if ext := filepath.Ext(photoID); ext != "" {
		photoID = strings.TrimSuffix(photoID, ext)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	p := g.photoByID(photoID)
	if p == nil {
		return "", domain.ErrPhotoNotFound
	}
	return p.FullPath, nil
}

// AddToAlbum appends the given photo ids to an existing album, skipping
// ids already present. When nothing new remains the call is a silent
// no-op: no save, no event.
func (g *Gallery) AddToAlbum(photoIDs []string, albumID string) error {
	g.mu.Lock()
	a := g.albumByID(albumID)
	if a == nil {
		g.mu.Unlock()
		return domain.ErrAlbumNotFound
	}

	added := g.appendNewMembers(a, photoIDs)
	if len(added) == 0 {
		g.mu.Unlock()
		return nil
	}

	payload := domain.AlbumPhotosPayload{Photos: g.photosByIDs(added), Album: a.Clone()}
	g.mu.Unlock()

	g.scheduleSave()
	g.emit(domain.EventAddedToAlbum, payload)
	return nil
}

// AddToNewAlbum creates an album named albumName holding the given photos.
// The id is derived from the name, so repeating the call with the same
// name merges into the existing record instead of inserting a duplicate.
// It always succeeds and always emits added_to_album.
func (g *Gallery) AddToNewAlbum(photoIDs []string, albumName string) error {
	id := DeriveAlbumID(albumName)

	g.mu.Lock()
	a := g.albumByID(id)
	if a == nil {
		g.albums = append(g.albums, domain.Album{
			ID:        id,
			Name:      albumName,
			Photos:    []string{},
			CreatedAt: time.Now(),
			CreatedBy: "unknown",
		})
		a = &g.albums[len(g.albums)-1]
	}
	g.appendNewMembers(a, photoIDs)

	payload := domain.AlbumPhotosPayload{Photos: g.photosByIDs(photoIDs), Album: a.Clone()}
	g.mu.Unlock()

	g.scheduleSave()
	g.emit(domain.EventAddedToAlbum, payload)
	return nil
}

// RemoveFromAlbum removes the intersection of the given ids and the
// album's members. When none of the ids are members the call is a silent
// no-op: no save, no event.
func (g *Gallery) RemoveFromAlbum(photoIDs []string, albumID string) error {
	g.mu.Lock()
	a := g.albumByID(albumID)
	if a == nil {
		g.mu.Unlock()
		return domain.ErrAlbumNotFound
	}

	member := make(map[string]bool, len(a.Photos))
	for _, id := range a.Photos {
		member[id] = true
	}
	var removed []string
	for _, id := range photoIDs {
		if member[id] {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		g.mu.Unlock()
		return nil
	}

	drop := make(map[string]bool, len(removed))
	for _, id := range removed {
		drop[id] = true
	}
	kept := a.Photos[:0]
	for _, id := range a.Photos {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	a.Photos = kept

	payload := domain.AlbumPhotosPayload{Photos: g.photosByIDs(removed), Album: a.Clone()}
	g.mu.Unlock()

	g.scheduleSave()
	g.emit(domain.EventRemovedFromAlbum, payload)
	return nil
}

// DeleteAlbum removes the album record entirely. Member photos are
// untouched. The emitted snapshot is taken before deletion.
func (g *Gallery) DeleteAlbum(albumID string) error {
	g.mu.Lock()
	idx := -1
	for i := range g.albums {
		if g.albums[i].ID == albumID {
			idx = i
			break
		}
	}
	if idx == -1 {
		g.mu.Unlock()
		return domain.ErrAlbumNotFound
	}

	snapshot := g.albums[idx].Clone()
	g.albums = append(g.albums[:idx], g.albums[idx+1:]...)
	g.mu.Unlock()

	g.scheduleSave()
	g.emit(domain.EventAlbumDeleted, domain.AlbumDeletedPayload{Album: snapshot})
	return nil
}

// RenamePhoto moves the underlying file to newName plus the original
// extension in the same directory. The in-memory record is updated only
// when the move succeeds, so memory never drifts from disk. The result
// event is emitted for both outcomes with the Success flag set
// accordingly; only an unknown photo id is an error.
func (g *Gallery) RenamePhoto(photoID, newName string) error {
	g.mu.Lock()
	p := g.photoByID(photoID)
	if p == nil {
		g.mu.Unlock()
		return domain.ErrPhotoNotFound
	}

	newBasename := newName + "." + p.Ext
	from := p.FullPath
	to := filepath.Join(filepath.Dir(from), newBasename)

	err := os.Rename(from, to)
	success := err == nil
	if success {
		p.FullPath = to
		p.Basename = newBasename
	}
	g.mu.Unlock()

	if success {
		g.scheduleSave()
	} else {
		slog.Warn("rename photo failed", "photo", photoID, "from", from, "to", to, "error", err)
	}
	g.emit(domain.EventRenamePhotoResult, domain.RenamePhotoResultPayload{
		PhotoID: photoID,
		From:    from,
		To:      to,
		Success: success,
	})
	return nil
}

// ApplyScan reconciles the photo collection with a library scan: photos
// whose files are gone (FullPath absent from present) are pruned and the
// newly discovered ones appended. Returns how many were added and removed.
func (g *Gallery) ApplyScan(discovered []domain.Photo, present map[string]bool) (added, removed int) {
	g.mu.Lock()
	kept := g.photos[:0]
	for _, p := range g.photos {
		if present[p.FullPath] {
			kept = append(kept, p)
		} else {
			removed++
		}
	}
	g.photos = append(kept, discovered...)
	added = len(discovered)
	g.mu.Unlock()

	if added > 0 || removed > 0 {
		g.scheduleSave()
	}
	return added, removed
}

// Flush writes the current snapshot to the store synchronously. Used at
// shutdown and by tests; regular mutations rely on the async saver.
func (g *Gallery) Flush(ctx context.Context) error {
	photos, albums := g.snapshot()
	return g.store.Save(ctx, photos, albums)
}

// sortedFiltered runs steps 1-3 of the query pipeline. Caller holds at
// least the read lock.
func (g *Gallery) sortedFiltered(q Query) []domain.Photo {
	photos := make([]domain.Photo, len(g.photos))
	copy(photos, g.photos)

	less := lessFunc(q.OrderBy)
	sort.SliceStable(photos, func(i, j int) bool {
		if q.OrderDesc {
			return less(photos[j], photos[i])
		}
		return less(photos[i], photos[j])
	})

	// An album filter only applies when the album actually exists; an
	// unknown album id leaves the result unfiltered.
	var member map[string]bool
	if q.AlbumID != "" {
		if a := g.albumByID(q.AlbumID); a != nil {
			member = make(map[string]bool, len(a.Photos))
			for _, id := range a.Photos {
				member[id] = true
			}
		}
	}

	filtered := photos[:0]
	for _, p := range photos {
		if member != nil && !member[p.ID] {
			continue
		}
		if q.Search != "" && !strings.Contains(p.Basename, q.Search) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func lessFunc(orderBy string) func(a, b domain.Photo) bool {
	switch orderBy {
	case OrderByBasename:
		return func(a, b domain.Photo) bool { return a.Basename < b.Basename }
	case OrderBySize:
		return func(a, b domain.Photo) bool { return a.Size < b.Size }
	default:
		return func(a, b domain.Photo) bool { return a.Birthtime.Before(b.Birthtime) }
	}
}

// appendNewMembers appends the ids not already in the album, preserving
// input order and skipping duplicates within the batch. Caller holds the
// write lock.
func (g *Gallery) appendNewMembers(a *domain.Album, photoIDs []string) []string {
	member := make(map[string]bool, len(a.Photos))
	for _, id := range a.Photos {
		member[id] = true
	}

	var added []string
	for _, id := range photoIDs {
		if id == "" || member[id] {
			continue
		}
		member[id] = true
		added = append(added, id)
	}
	a.Photos = append(a.Photos, added...)
	return added
}

func (g *Gallery) albumByID(id string) *domain.Album {
	for i := range g.albums {
		if g.albums[i].ID == id {
			return &g.albums[i]
		}
	}
	return nil
}

func (g *Gallery) photoByID(id string) *domain.Photo {
	for i := range g.photos {
		if g.photos[i].ID == id {
			return &g.photos[i]
		}
	}
	return nil
}

// photosByIDs resolves ids to photo records, dropping dangling references.
// Caller holds a lock.
func (g *Gallery) photosByIDs(ids []string) []domain.Photo {
	photos := make([]domain.Photo, 0, len(ids))
	for _, id := range ids {
		if p := g.photoByID(id); p != nil {
			photos = append(photos, *p)
		}
	}
	return photos
}

func (g *Gallery) emit(event string, payload any) {
	if g.sink != nil {
		g.sink(event, payload)
	}
}

// scheduleSave signals the saver without blocking. The channel holds one
// pending signal; extra signals while a save is queued coalesce into it.
func (g *Gallery) scheduleSave() {
	select {
	case g.saveCh <- struct{}{}:
	default:
	}
}

func (g *Gallery) saver() {
	for range g.saveCh {
		photos, albums := g.snapshot()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := g.store.Save(ctx, photos, albums); err != nil {
			slog.Error("save catalog snapshot", "error", err)
		}
		cancel()
	}
}

func (g *Gallery) snapshot() ([]domain.Photo, []domain.Album) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	photos := make([]domain.Photo, len(g.photos))
	copy(photos, g.photos)
	albums := make([]domain.Album, len(g.albums))
	for i, a := range g.albums {
		albums[i] = a.Clone()
	}
	return photos, albums
}
