package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PutPhoto stores photo bytes under key.
func PutPhoto(ctx context.Context, db *sql.DB, key string, data []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (key, data, mime) VALUES (?, ?, ?)`,
		key, data, mime,
	)
	if err != nil {
		return fmt.Errorf("storing photo: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo. Deleting a missing key is not an error.
func DeletePhoto(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM photos WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}

// CountPhotos returns the number of stored photos.
func CountPhotos(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting photos: %w", err)
	}
	return n, nil
}

// GetPhoto returns a photo's bytes and MIME type, or nil data if there is none.
func GetPhoto(ctx context.Context, db *sql.DB, key string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM photos WHERE key = ?`, key,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return data, mime, nil
}
