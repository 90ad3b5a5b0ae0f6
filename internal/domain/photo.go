package domain

import "time"

// Photo is a single indexed image file in the catalog. The ID is assigned
// once at ingestion and never changes; FullPath and Basename change only
// through a rename, which keeps the ID stable.
type Photo struct {
	ID        string    `json:"id"`
	Basename  string    `json:"basename"`
	Ext       string    `json:"ext"` // without the leading dot
	FullPath  string    `json:"fullPath"`
	ThumbPath string    `json:"thumbPath,omitempty"`
	Size      int64     `json:"size"`
	Birthtime time.Time `json:"birthtime"`
}
