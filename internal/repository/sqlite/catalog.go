package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/msomdec/photocat/internal/domain"
)

// CatalogStore implements domain.CatalogStore on two snapshot tables,
// photos and albums. The in-memory catalog is the source of truth while
// the process runs; Save overwrites both tables with the latest snapshot,
// so the durable form is only as fresh as the last completed save.
type CatalogStore struct {
	db *sql.DB
}

// Load reads both collections in storage order. On first use it seeds the
// reserved Starred album so that every catalog starts with it.
func (s *CatalogStore) Load(ctx context.Context) ([]domain.Photo, []domain.Album, error) {
	if err := s.seedStarred(ctx); err != nil {
		return nil, nil, fmt.Errorf("seed starred album: %w", err)
	}

	photos, err := s.loadPhotos(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load photos: %w", err)
	}

	albums, err := s.loadAlbums(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load albums: %w", err)
	}

	return photos, albums, nil
}

// Save replaces the durable snapshot with the given collections inside one
// transaction. Last writer wins at full-snapshot granularity.
func (s *CatalogStore) Save(ctx context.Context, photos []domain.Photo, albums []domain.Album) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM photos"); err != nil {
		return fmt.Errorf("clear photos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM albums"); err != nil {
		return fmt.Errorf("clear albums: %w", err)
	}

	for i, p := range photos {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO photos (id, basename, ext, full_path, thumb_path, size, birthtime, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Basename, p.Ext, p.FullPath, p.ThumbPath, p.Size, p.Birthtime.UTC(), i,
		)
		if err != nil {
			return fmt.Errorf("insert photo %s: %w", p.ID, err)
		}
	}

	for i, a := range albums {
		members, err := json.Marshal(a.Photos)
		if err != nil {
			return fmt.Errorf("encode album %s members: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO albums (id, name, photos, created_at, created_by, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, string(members), a.CreatedAt.UTC(), a.CreatedBy, i,
		)
		if err != nil {
			return fmt.Errorf("insert album %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *CatalogStore) seedStarred(ctx context.Context) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM albums WHERE id = ?", domain.StarredAlbumID,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var position int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM albums",
	).Scan(&position); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO albums (id, name, photos, created_at, created_by, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		domain.StarredAlbumID, "Starred", "[]", time.Now().UTC(), "system", position,
	)
	return err
}

func (s *CatalogStore) loadPhotos(ctx context.Context) ([]domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, basename, ext, full_path, thumb_path, size, birthtime
		 FROM photos ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.Basename, &p.Ext, &p.FullPath, &p.ThumbPath, &p.Size, &p.Birthtime); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *CatalogStore) loadAlbums(ctx context.Context) ([]domain.Album, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, photos, created_at, created_by
		 FROM albums ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		var a domain.Album
		var members string
		if err := rows.Scan(&a.ID, &a.Name, &members, &a.CreatedAt, &a.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &a.Photos); err != nil {
			return nil, fmt.Errorf("decode album %s members: %w", a.ID, err)
		}
		if a.Photos == nil {
			a.Photos = []string{}
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}
