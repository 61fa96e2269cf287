// connection.go
//
// Contract assembly and part library data service
// Copyright (c) 2026 AgencyKit <dev@agencykit.io>
//
// This file is part of contractd.
// contractd is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// contractd is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with contractd.
// If not, see <https://www.gnu.org/licenses/>.

package database

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/agencykit/contractd/data"
	"github.com/agencykit/contractd/internal/config"
	"github.com/agencykit/contractd/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = mysql.Open(dsn)

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		dialector = postgres.Open(dsn)

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		dialector = sqlite.Open(cfg.DBDatabase)

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(cfg.DBConnectionLimit / 2)

	log.Printf("Connected to %s database: %s", cfg.DBType, cfg.DBDatabase)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ContractPart{},
		&models.Contract{},
		&models.ContractPartAssociation{},
	)
}

// SeedPartLibrary loads the embedded default part library into an empty
// contractpart table. An already-populated table is left alone so operator
// edits to the library survive restarts.
func SeedPartLibrary(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ContractPart{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count contract parts: %w", err)
	}
	if count > 0 {
		return nil
	}

	var seeds []struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		IsRequired bool   `json:"is_required"`
	}
	if err := json.Unmarshal([]byte(data.SeedContractParts), &seeds); err != nil {
		return fmt.Errorf("failed to parse embedded part library: %w", err)
	}

	parts := make([]models.ContractPart, len(seeds))
	for i, s := range seeds {
		parts[i] = models.ContractPart{
			ExternalID: uuid.NewString(),
			Title:      s.Title,
			Content:    s.Content,
			IsRequired: s.IsRequired,
			SortOrder:  i,
		}
	}

	if err := db.Create(&parts).Error; err != nil {
		return fmt.Errorf("failed to seed part library: %w", err)
	}

	log.Printf("Seeded part library with %d default parts", len(parts))
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
