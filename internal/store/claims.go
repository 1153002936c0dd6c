package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const claimColumns = `id, item_id, item_name, claimant_name, claimant_email, claimant_phone,
	proof_of_ownership, status, created_at, updated_at`

// CreateClaim inserts a pending claim for an approved item. The item name is
// copied from the item as it is at this moment, so later renames do not
// rewrite the claim. Fails with ErrNotFound if the item does not exist and
// ErrStatusConflict if it is not approved.
func CreateClaim(ctx context.Context, db *sql.DB, itemID int64, claim *model.ClaimRequest) (*model.ClaimRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemName, status string
	err = tx.QueryRowContext(ctx,
		`SELECT item_name, status FROM found_items WHERE id = ?`, itemID,
	).Scan(&itemName, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if status != model.StatusApproved {
		return nil, ErrStatusConflict
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claim_requests (item_id, item_name, claimant_name, claimant_email,
		                             claimant_phone, proof_of_ownership, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		itemID, itemName, claim.ClaimantName, claim.ClaimantEmail,
		nullString(claim.ClaimantPhone), claim.ProofOfOwnership, model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	created, err := scanClaim(tx.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claim_requests WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("reading created claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return created, nil
}

// GetClaim returns a claim by ID, or nil if it does not exist.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.ClaimRequest, error) {
	claim, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claim_requests WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// ListClaims returns claims newest first, optionally filtered by status.
func ListClaims(ctx context.Context, db *sql.DB, status string) ([]model.ClaimRequest, error) {
	query := `SELECT ` + claimColumns + ` FROM claim_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListClaimsForItem returns all claims that reference an item, newest first.
func ListClaimsForItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.ClaimRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claim_requests WHERE item_id = ?
		 ORDER BY created_at DESC, id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for item: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ApproveClaim resolves a pending claim in favour of the claimant: the claim
// becomes approved, its item moves from approved to claimed, and every other
// pending claim for the same item is rejected. All or nothing.
func ApproveClaim(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var itemID sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT status, item_id FROM claim_requests WHERE id = ?`, id,
	).Scan(&status, &itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking claim: %w", err)
	}
	if status != model.StatusPending || !itemID.Valid {
		return ErrStatusConflict
	}

	if err := transitionFoundItem(ctx, tx, itemID.Int64, model.StatusApproved, model.StatusClaimed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrStatusConflict
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.StatusApproved, id,
	); err != nil {
		return fmt.Errorf("approving claim: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = ? AND id != ? AND status = ?`,
		model.StatusRejected, itemID.Int64, id, model.StatusPending,
	); err != nil {
		return fmt.Errorf("rejecting competing claims: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing claim approval: %w", err)
	}
	return nil
}

// RejectClaim moves a pending claim to rejected.
func RejectClaim(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE claim_requests SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.StatusRejected, id, model.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("rejecting claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rejecting claim: %w", err)
	}
	if n == 1 {
		return nil
	}

	claim, err := GetClaim(ctx, db, id)
	if err != nil {
		return err
	}
	if claim == nil {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func scanClaims(rows *sql.Rows) ([]model.ClaimRequest, error) {
	var claims []model.ClaimRequest
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func scanClaim(s scanner) (*model.ClaimRequest, error) {
	c := &model.ClaimRequest{}
	var itemID sql.NullInt64
	var phone sql.NullString
	err := s.Scan(&c.ID, &itemID, &c.ItemName, &c.ClaimantName, &c.ClaimantEmail, &phone,
		&c.ProofOfOwnership, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if itemID.Valid {
		id := itemID.Int64
		c.ItemID = &id
	}
	c.ClaimantPhone = phone.String
	return c, nil
}
