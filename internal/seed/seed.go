// Package seed bootstraps the records a fresh deployment needs before the
// first request arrives.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/auth/password"
	"gorm.io/gorm"
)

// EnsurePlatformAdmin creates or promotes the platform operator account.
// Called on startup when BOOTSTRAP_ADMIN_EMAIL is configured; running it
// again is a no-op.
func EnsurePlatformAdmin(db *gorm.DB, email, plainPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if plainPassword == "" {
		return errors.New("bootstrap admin password is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err == nil {
			if user.IsPlatformAdmin {
				return nil
			}
			return tx.WithContext(ctx).Model(&authdomain.User{}).
				Where("id = ?", user.ID).
				Update("is_platform_admin", true).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:                  node.Generate(),
			ExternalID:          uuid.NewString(),
			Email:               email,
			FullName:            "Platform Admin",
			PasswordHash:        &hashed,
			IsPlatformAdmin:     true,
			LastPasswordChanged: &now,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
