package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/referralhub/go-referral-backend/internal/domain"
	"github.com/referralhub/go-referral-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:referralsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Invite{},
		&domain.Confirmation{},
		&domain.Acceptance{},
		&domain.CallbackReceipt{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedUser registers a bare user row directly.
func seedUser(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	if err := repo.CreateUser(context.Background(), db, &domain.User{ID: id}); err != nil {
		t.Fatalf("seed user %d: %v", id, err)
	}
}

// seedInvite registers the user and mints its invite row directly.
func seedInvite(t *testing.T, db *gorm.DB, userID int64, code string) *domain.Invite {
	t.Helper()
	seedUser(t, db, userID)
	inv, err := repo.CreateInvite(context.Background(), db, userID, code)
	if err != nil {
		t.Fatalf("seed invite for %d: %v", userID, err)
	}
	return inv
}

func strptr(s string) *string { return &s }
