package domain

// Event names broadcast after successful catalog mutations.
const (
	EventAddedToAlbum      = "added_to_album"
	EventRemovedFromAlbum  = "removed_from_album"
	EventAlbumDeleted      = "album_deleted"
	EventRenamePhotoResult = "rename_photo_result"
)

// Event pairs an event name with its payload for fan-out to listeners.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// AlbumPhotosPayload accompanies added_to_album and removed_from_album.
// Photos holds the affected photo records, Album the post-mutation album.
type AlbumPhotosPayload struct {
	Photos []Photo `json:"photos"`
	Album  Album   `json:"album"`
}

// AlbumDeletedPayload carries a snapshot of the album taken before deletion.
type AlbumDeletedPayload struct {
	Album Album `json:"album"`
}

// RenamePhotoResultPayload is emitted for every rename attempt, successful
// or not; Success tells listeners which one it was.
type RenamePhotoResultPayload struct {
	PhotoID string `json:"photoId"`
	From    string `json:"from"`
	To      string `json:"to"`
	Success bool   `json:"success"`
}
