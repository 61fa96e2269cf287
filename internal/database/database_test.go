package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agencykit/contractd/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestSeedPartLibrary(t *testing.T) {
	db := newTestDB(t)

	if err := SeedPartLibrary(db); err != nil {
		t.Fatalf("Failed to seed part library: %v", err)
	}

	var parts []models.ContractPart
	if err := db.Order("sort_order ASC").Find(&parts).Error; err != nil {
		t.Fatalf("Failed to load parts: %v", err)
	}
	if len(parts) == 0 {
		t.Fatal("Expected seeded parts")
	}

	requiredSeen := false
	for i, p := range parts {
		if p.SortOrder != i {
			t.Errorf("Expected sort_order %d, got %d", i, p.SortOrder)
		}
		if p.ExternalID == "" {
			t.Errorf("Part %q has no external id", p.Title)
		}
		if p.IsCustom {
			t.Errorf("Seeded part %q must not be flagged custom", p.Title)
		}
		if p.IsRequired {
			requiredSeen = true
		}
	}
	if !requiredSeen {
		t.Error("Expected at least one required part in the default library")
	}
}

// Seeding twice must not duplicate the library.
func TestSeedPartLibraryIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := SeedPartLibrary(db); err != nil {
		t.Fatalf("Failed to seed part library: %v", err)
	}
	var first int64
	db.Model(&models.ContractPart{}).Count(&first)

	if err := SeedPartLibrary(db); err != nil {
		t.Fatalf("Failed to re-seed part library: %v", err)
	}
	var second int64
	db.Model(&models.ContractPart{}).Count(&second)

	if first != second {
		t.Errorf("Expected %d parts after re-seed, got %d", first, second)
	}
}

// An operator-edited library (non-empty table) is left alone.
func TestSeedPartLibrarySkipsPopulatedTable(t *testing.T) {
	db := newTestDB(t)

	existing := models.ContractPart{ExternalID: "manual", Title: "Manual"}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}

	if err := SeedPartLibrary(db); err != nil {
		t.Fatalf("Failed to seed part library: %v", err)
	}

	var count int64
	db.Model(&models.ContractPart{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 part, got %d", count)
	}
}
