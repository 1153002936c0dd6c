package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, item_name, category, description, location_found, date_found,
	finder_name, finder_email, photo_url, status, created_at, updated_at`

// CreateFoundItem inserts a new found item. The status is always pending,
// whatever the caller put in item.Status.
func CreateFoundItem(ctx context.Context, db *sql.DB, item *model.FoundItem) (*model.FoundItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO found_items (item_name, category, description, location_found, date_found,
		                          finder_name, finder_email, photo_url, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemName, item.Category, nullString(item.Description), item.LocationFound, item.DateFound,
		item.FinderName, item.FinderEmail, nullString(item.PhotoURL), model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found item id: %w", err)
	}

	return GetFoundItem(ctx, db, id)
}

// GetFoundItem returns a found item by ID, or nil if it does not exist.
func GetFoundItem(ctx context.Context, db *sql.DB, id int64) (*model.FoundItem, error) {
	item, err := scanFoundItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM found_items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found item: %w", err)
	}
	return item, nil
}

// ListFoundItems returns found items newest first, optionally filtered by status.
func ListFoundItems(ctx context.Context, db *sql.DB, status string) ([]model.FoundItem, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM found_items WHERE status = ?
			 ORDER BY created_at DESC, id DESC`, status,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM found_items ORDER BY created_at DESC, id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing found items: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for rows.Next() {
		item, err := scanFoundItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// TransitionFoundItem moves an item from one status to another. It fails with
// ErrStatusConflict if the item is no longer in status from.
func TransitionFoundItem(ctx context.Context, db *sql.DB, id int64, from, to string) error {
	return transitionFoundItem(ctx, db, id, from, to)
}

func transitionFoundItem(ctx context.Context, ex execer, id int64, from, to string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("updating found item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating found item status: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = ex.QueryRowContext(ctx, `SELECT COUNT(*) FROM found_items WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking found item: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}

// DeleteFoundItem permanently removes an item. Pending claims for it are
// rejected first; all of its claims keep their item name but lose the
// reference (ON DELETE SET NULL). Returns the number of claims rejected.
func DeleteFoundItem(ctx context.Context, db *sql.DB, id int64) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = ? AND status = ?`,
		model.StatusRejected, id, model.StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("rejecting pending claims: %w", err)
	}
	rejected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rejecting pending claims: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM found_items WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting found item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting found item: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing item deletion: %w", err)
	}
	return rejected, nil
}

func scanFoundItem(s scanner) (*model.FoundItem, error) {
	item := &model.FoundItem{}
	var description, photoURL sql.NullString
	err := s.Scan(&item.ID, &item.ItemName, &item.Category, &description, &item.LocationFound,
		&item.DateFound, &item.FinderName, &item.FinderEmail, &photoURL, &item.Status,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.PhotoURL = photoURL.String
	return item, nil
}
