package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRevoked is returned for a token that was logged out.
	ErrRevoked = errors.New("token revoked")
)

// dummyHash is compared against when the user does not exist so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("lostfound-dummy-password"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Login verifies a username and password against the stored accounts and
// issues a session token.
func Login(ctx context.Context, db *sql.DB, secret, username, password string) (string, *Claims, error) {
	user, err := store.GetActiveUserByUsername(ctx, db, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}
	if !CheckPassword(user, password) {
		return "", nil, ErrInvalidCredentials
	}

	return GenerateToken(secret, user)
}

// Verify validates a token and checks it has not been revoked.
func Verify(ctx context.Context, db *sql.DB, secret, token string) (*Claims, error) {
	claims, err := ValidateToken(secret, token)
	if err != nil {
		return nil, err
	}
	revoked, err := store.IsTokenRevoked(ctx, db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Logout revokes the session identified by claims until it would have expired.
func Logout(ctx context.Context, db *sql.DB, claims *Claims) error {
	expires := time.Now().Add(TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return store.RevokeToken(ctx, db, claims.ID, expires)
}
