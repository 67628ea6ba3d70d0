// Package services – dashboard authentication.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/repo"
)

// UserRepo abstracts the persistence operations AuthService needs.
type UserRepo interface {
	GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error)
	RecordFailedLogin(ctx context.Context, db *gorm.DB, username string, threshold int, lockFor time.Duration) error
	ResetLoginState(ctx context.Context, db *gorm.DB, username string) error
}

// AuthService verifies dashboard credentials against the user table with
// a failed-attempt lockout. Session issuance lives in the HTTP layer;
// this service only answers "may this user log in right now".
type AuthService struct {
	DB   *gorm.DB
	Repo UserRepo

	// LockoutThreshold is the number of consecutive failures that
	// triggers a lockout; LockoutFor is the window length.
	LockoutThreshold int
	LockoutFor       time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, r UserRepo, threshold int, lockFor time.Duration) *AuthService {
	if threshold <= 0 {
		threshold = 5
	}
	if lockFor <= 0 {
		lockFor = 15 * time.Minute
	}
	return &AuthService{
		DB:               db,
		Repo:             r,
		LockoutThreshold: threshold,
		LockoutFor:       lockFor,
		Now:              func() time.Time { return time.Now().UTC() },
	}
}

// Login checks username/password. A wrong password counts toward the
// lockout threshold; a correct one resets the counter. Unknown users get
// the same ErrBadCredentials as wrong passwords so the endpoint does not
// leak which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	u, err := s.Repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrBadCredentials
		}
		return mapStoreError(err)
	}

	if u.LockedUntil != nil && s.Now().Before(*u.LockedUntil) {
		return ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		if rerr := s.Repo.RecordFailedLogin(ctx, s.DB, username, s.LockoutThreshold, s.LockoutFor); rerr != nil {
			log.Warn().Err(rerr).Str("username", username).Msg("auth: failed-login bookkeeping failed")
		}
		return ErrBadCredentials
	}

	if rerr := s.Repo.ResetLoginState(ctx, s.DB, username); rerr != nil {
		log.Warn().Err(rerr).Str("username", username).Msg("auth: login state reset failed")
	}
	return nil
}
