package domain

import "context"

// CatalogStore persists the two catalog collections as a durable snapshot.
// Load returns both collections in storage order, seeding defaults on first
// use; Save overwrites the durable form with the given snapshot atomically.
type CatalogStore interface {
	Load(ctx context.Context) (photos []Photo, albums []Album, err error)
	Save(ctx context.Context, photos []Photo, albums []Album) error
}
