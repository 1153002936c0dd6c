package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/cache"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/store"
)

// bootstrapAdmin creates the first admin account when the database has none.
// The password comes from the config or is generated and printed once.
func bootstrapAdmin(ctx context.Context, database *sql.DB, cfg *config.Config) error {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}

	password := cfg.AdminPassword
	generated := password == ""
	if generated {
		if password, err = generatePassword(16); err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
	} else if err := model.ValidatePassword(password); err != nil {
		return fmt.Errorf("LOSTFOUND_ADMIN_PASSWORD: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateUser(ctx, database, cfg.AdminUser, hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("admin account created", "user", cfg.AdminUser)
	if generated {
		printInitResult(cfg.DBPath, cfg.AdminUser, password)
	}
	return nil
}

// printInitResult prints the generated admin credentials to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database initialized: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config, database *sql.DB) (photos.Store, error) {
	if cfg.PhotoBackend != config.PhotoBackendMinio {
		return photos.NewDBStore(database), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s, err := photos.NewMinioStore(ctx, photos.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up photo bucket: %w", err)
	}
	slog.Info("photo bucket ready", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	return s, nil
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache {
	case config.CacheNone:
		return cache.Nop{}, nil
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		c, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			TTL:         cfg.CacheTTL,
			DialTimeout: 2 * time.Second,
			ReadTimeout: time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("redis cache ready", "addr", cfg.RedisAddr)
		return c, nil
	default:
		return cache.NewMemory(), nil
	}
}

// purgeRevokedTokens periodically drops revocations for tokens that have
// expired on their own.
func purgeRevokedTokens(ctx context.Context, database *sql.DB, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpiredTokens(ctx, database, now)
			if err != nil {
				slog.Error("failed to purge revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
