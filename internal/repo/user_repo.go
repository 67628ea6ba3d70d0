// Package repo – dashboard user repository.
//
// Account lockout counters are persisted on the user row so a restart
// does not reset an attacker's budget.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"golang.org/x/crypto/bcrypt"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// GetUserByUsername fetches a user account, or ErrNotFound.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user with a bcrypt-hashed password.
func CreateUser(ctx context.Context, db *gorm.DB, username, password, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureDefaultAdmin seeds the admin account on first boot so a fresh
// deployment is reachable. Existing accounts are left alone.
func EnsureDefaultAdmin(ctx context.Context, db *gorm.DB, username, password string) error {
	_, err := GetUserByUsername(ctx, db, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = CreateUser(ctx, db, username, password, "admin")
	return err
}

// RecordFailedLogin increments the failure counter and, at the given
// threshold, locks the account until now+lockFor.
func RecordFailedLogin(ctx context.Context, db *gorm.DB, username string, threshold int, lockFor time.Duration) error {
	u, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{"failed_attempts": u.FailedAttempts + 1}
	if u.FailedAttempts+1 >= threshold {
		until := time.Now().UTC().Add(lockFor)
		updates["locked_until"] = &until
	}
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Updates(updates).Error
}

// ResetLoginState clears the failure counter and lock after a successful
// login.
func ResetLoginState(ctx context.Context, db *gorm.DB, username string) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{"failed_attempts": 0, "locked_until": nil}).Error
}
