package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/repo"
)

type fakeUserRepo struct {
	user    *domain.User
	getErr  error
	failed  int
	resets  int
	lastFor time.Duration
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, _ *gorm.DB, _ string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.user == nil {
		return nil, repo.ErrNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepo) RecordFailedLogin(_ context.Context, _ *gorm.DB, _ string, _ int, lockFor time.Duration) error {
	r.failed++
	r.lastFor = lockFor
	return nil
}

func (r *fakeUserRepo) ResetLoginState(_ context.Context, _ *gorm.DB, _ string) error {
	r.resets++
	return nil
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &domain.User{ID: 1, Username: "admin", PasswordHash: string(hash), Role: "admin"}
}

func TestLogin_Success(t *testing.T) {
	fr := &fakeUserRepo{user: userWithPassword(t, "s3cret")}
	svc := NewAuthService(nil, fr, 5, 15*time.Minute)

	if err := svc.Login(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if fr.resets != 1 {
		t.Fatalf("resets = %d, want 1", fr.resets)
	}
	if fr.failed != 0 {
		t.Fatalf("failed-login recorded on success")
	}
}

func TestLogin_WrongPasswordCountsTowardLockout(t *testing.T) {
	fr := &fakeUserRepo{user: userWithPassword(t, "s3cret")}
	svc := NewAuthService(nil, fr, 5, 15*time.Minute)

	err := svc.Login(context.Background(), "admin", "nope")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("err = %v, want ErrBadCredentials", err)
	}
	if fr.failed != 1 {
		t.Fatalf("failed = %d, want 1", fr.failed)
	}
	if fr.lastFor != 15*time.Minute {
		t.Fatalf("lockFor = %v, want 15m", fr.lastFor)
	}
}

func TestLogin_UnknownUserIndistinguishable(t *testing.T) {
	svc := NewAuthService(nil, &fakeUserRepo{}, 5, 15*time.Minute)

	err := svc.Login(context.Background(), "ghost", "whatever")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("err = %v, want ErrBadCredentials", err)
	}
}

func TestLogin_LockedAccount(t *testing.T) {
	u := userWithPassword(t, "s3cret")
	until := time.Now().Add(10 * time.Minute)
	u.LockedUntil = &until
	fr := &fakeUserRepo{user: u}
	svc := NewAuthService(nil, fr, 5, 15*time.Minute)

	err := svc.Login(context.Background(), "admin", "s3cret")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
	if fr.failed != 0 || fr.resets != 0 {
		t.Fatal("locked account must not touch counters")
	}
}

func TestLogin_ExpiredLockAdmitsCorrectPassword(t *testing.T) {
	u := userWithPassword(t, "s3cret")
	until := time.Now().Add(-time.Minute)
	u.LockedUntil = &until
	fr := &fakeUserRepo{user: u}
	svc := NewAuthService(nil, fr, 5, 15*time.Minute)

	if err := svc.Login(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("Login after lock expiry: %v", err)
	}
	if fr.resets != 1 {
		t.Fatalf("resets = %d, want 1", fr.resets)
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	fr := &fakeUserRepo{getErr: context.DeadlineExceeded}
	svc := NewAuthService(nil, fr, 5, 15*time.Minute)

	err := svc.Login(context.Background(), "admin", "s3cret")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}
