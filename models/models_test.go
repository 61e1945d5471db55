package models

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "elector_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

func newTestUser(t *testing.T, db *gorm.DB, subject string) *User {
	t.Helper()

	user, err := GetOrCreateUser(context.Background(), db, subject, subject+"@example.com", "")
	if err != nil {
		t.Fatalf("create user %s: %v", subject, err)
	}

	return user
}

// newTestRealm creates a realm owned by the given user, who gets the
// starting ledger through the OWNER membership.
func newTestRealm(t *testing.T, db *gorm.DB, owner *User) *Realm {
	t.Helper()

	realm, err := CreateRealm(context.Background(), db, owner, "Brandenburg")
	if err != nil {
		t.Fatalf("create realm: %v", err)
	}

	return realm
}

// fund tops up a member's ledger beyond the starting grant.
func fund(t *testing.T, db *gorm.DB, realmID, userID uint, extra rules.Yield) {
	t.Helper()

	resource, err := EnsureResources(context.Background(), db, realmID, userID)
	if err != nil {
		t.Fatalf("ensure ledger: %v", err)
	}

	resource.Apply(extra)
	if err := db.Save(resource).Error; err != nil {
		t.Fatalf("fund ledger: %v", err)
	}
}
