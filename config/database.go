package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase establishes the database connection. A postgres URL in
// DATABASE_URL selects the postgres driver; anything else (or an empty URL)
// falls back to a local sqlite file, which is what development and tests use.
func ConnectDatabase(cfg *Config) error {
	dialector := selectDialector(cfg)

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

func selectDialector(cfg *Config) gorm.Dialector {
	url := cfg.DatabaseURL
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url)
	}
	if url == "" {
		url = "garage.db"
		log.Println("DATABASE_URL not set, using local sqlite database:", url)
	}
	return sqlite.Open(url)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
