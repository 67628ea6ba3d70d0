package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ileco-one/triage-backend/internal/domain"
)

func newStoreDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("triage_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateOutageReport_Error_NoTable(t *testing.T) {
	db := newStoreDB(t /* no migrations */)
	err := CreateOutageReport(context.Background(), db, &domain.OutageReport{FullName: "Juan"})
	if err == nil {
		t.Fatal("expected error creating without table")
	}
}

func TestCreateOutageReport_SetsCreatedAt(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})

	start := time.Now().UTC().Add(-time.Minute)
	r := &domain.OutageReport{
		FullName:      "Juan Dela Cruz",
		Address:       "Brgy. Bacan, Cabatuan, Iloilo",
		ContactNumber: "09171234567",
		Details:       "no electricity since morning",
	}
	if err := CreateOutageReport(context.Background(), db, r); err != nil {
		t.Fatalf("CreateOutageReport: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected auto-assigned ID")
	}
	if r.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt not stamped: %v", r.CreatedAt)
	}

	got, err := GetOutageReport(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("GetOutageReport: %v", err)
	}
	if got.FullName != r.FullName || got.Address != r.Address {
		t.Fatalf("unexpected round-trip: %+v", got)
	}
}

func TestGetOutageReport_NotFound(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})
	_, err := GetOutageReport(context.Background(), db, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetOutageReportByRef(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})
	r := &domain.OutageReport{
		FullName:      "Maria Santos",
		Address:       "Purok 2, Santa Barbara, Iloilo",
		ContactNumber: "09181234567",
		JobOrderID:    "JO-20260830-0001",
	}
	if err := CreateOutageReport(context.Background(), db, r); err != nil {
		t.Fatalf("CreateOutageReport: %v", err)
	}

	got, err := GetOutageReportByRef(context.Background(), db, "JO-20260830-0001")
	if err != nil {
		t.Fatalf("GetOutageReportByRef: %v", err)
	}
	if got.ID != r.ID {
		t.Fatalf("ref lookup returned wrong row: %+v", got)
	}

	if _, err := GetOutageReportByRef(context.Background(), db, "JO-20260830-9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ref, got %v", err)
	}
}

func TestListOutageReports_Filters(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})
	ctx := context.Background()

	mk := func(name, details, priority, status string, hidden bool, age time.Duration) {
		t.Helper()
		r := &domain.OutageReport{
			FullName:      name,
			Address:       "Brgy. Tiring, Cabatuan, Iloilo",
			ContactNumber: "09171234567",
			Details:       details,
			Priority:      priority,
			Status:        status,
			Hidden:        hidden,
			CreatedAt:     time.Now().UTC().Add(-age),
		}
		if err := CreateOutageReport(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	mk("Ana Reyes", "fallen wire near school", domain.PriorityCritical, domain.StatusNew, false, time.Minute)
	mk("Ben Cruz", "brownout whole street", domain.PriorityHigh, domain.StatusResolved, false, 2*time.Minute)
	mk("Carol Uy", "flickering lights", domain.PriorityHigh, domain.StatusNew, true, 3*time.Minute)

	all, err := ListOutageReports(ctx, db, ComplaintFilters{})
	if err != nil {
		t.Fatalf("ListOutageReports: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("hidden row leaked: got %d rows", len(all))
	}
	if all[0].FullName != "Ana Reyes" {
		t.Fatalf("expected newest first, got %q", all[0].FullName)
	}

	crit, err := ListOutageReports(ctx, db, ComplaintFilters{Priority: "critical"}.Normalize())
	if err != nil {
		t.Fatalf("priority filter: %v", err)
	}
	if len(crit) != 1 || crit[0].FullName != "Ana Reyes" {
		t.Fatalf("priority filter mismatch: %+v", crit)
	}

	placeholder, err := ListOutageReports(ctx, db, ComplaintFilters{Status: "All Status"}.Normalize())
	if err != nil {
		t.Fatalf("placeholder filter: %v", err)
	}
	if len(placeholder) != 2 {
		t.Fatalf("placeholder should mean no filter, got %d rows", len(placeholder))
	}

	search, err := ListOutageReports(ctx, db, ComplaintFilters{Search: "FALLEN"}.Normalize())
	if err != nil {
		t.Fatalf("search filter: %v", err)
	}
	if len(search) != 1 || search[0].FullName != "Ana Reyes" {
		t.Fatalf("search should match details case-insensitively: %+v", search)
	}
}

func TestListOutageReports_EmptyStatusDefaultsToNew(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})
	ctx := context.Background()

	r := &domain.OutageReport{
		FullName:      "Dora Lim",
		Address:       "Brgy. Cagban, Leganes, Iloilo",
		ContactNumber: "09191234567",
	}
	if err := CreateOutageReport(ctx, db, r); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Blank out the stored status to simulate a legacy row.
	if err := db.Model(&domain.OutageReport{}).Where("id = ?", r.ID).Update("status", "").Error; err != nil {
		t.Fatalf("blank status: %v", err)
	}

	got, err := ListOutageReports(ctx, db, ComplaintFilters{Status: "NEW"})
	if err != nil {
		t.Fatalf("ListOutageReports: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("legacy empty status should normalize to NEW, got %d rows", len(got))
	}
}

func TestLatestOutageForAddressOn(t *testing.T) {
	db := newStoreDB(t, &domain.OutageReport{})
	ctx := context.Background()
	addr := "Brgy. Bacan, Cabatuan, Iloilo"
	now := time.Now().UTC()

	older := &domain.OutageReport{
		FullName: "Early Caller", Address: addr, ContactNumber: "09170000001",
		CreatedAt: now.Add(-2 * time.Hour), JobOrderID: "JO-20260830-0001",
	}
	newer := &domain.OutageReport{
		FullName: "Late Caller", Address: addr, ContactNumber: "09170000002",
		CreatedAt: now.Add(-time.Hour), JobOrderID: "JO-20260830-0002",
	}
	yesterday := &domain.OutageReport{
		FullName: "Yesterday", Address: addr, ContactNumber: "09170000003",
		CreatedAt: now.Add(-26 * time.Hour),
	}
	for _, r := range []*domain.OutageReport{older, newer, yesterday} {
		if err := CreateOutageReport(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := LatestOutageForAddressOn(ctx, db, addr, now)
	if err != nil {
		t.Fatalf("LatestOutageForAddressOn: %v", err)
	}
	if got.ID != newer.ID {
		t.Fatalf("expected newest same-day row, got %+v", got)
	}

	if _, err := LatestOutageForAddressOn(ctx, db, "elsewhere", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unseen address, got %v", err)
	}
}
