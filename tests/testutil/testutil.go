// Package testutil provides the shared setup helpers used by the
// integration and acceptance tests: an isolated in-memory database, a test
// configuration, and fixture records.
package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/models"
)

// SetupTestConfig installs a deterministic configuration for the test run
// and returns it
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GoEnv:           "test",
		Port:            "0",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		LogLevel:        "error",
	}
	config.SetConfig(cfg)
	return cfg
}

// SetupTestDB opens a fresh in-memory sqlite database, migrates every model
// into it and installs it as the active database
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "failed to migrate test database")

	config.SetDB(db)
	return db
}

// CreateTestUser inserts a user with a bcrypt-hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         "mechanic",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestOwner inserts an owner record
func CreateTestOwner(t *testing.T, db *gorm.DB, fullName string) *models.Owner {
	t.Helper()

	owner := &models.Owner{
		FullName: fullName,
		Email:    "owner@example.com",
		Phone:    "0600000000",
	}
	require.NoError(t, db.Create(owner).Error)
	return owner
}

// CreateTestVehicle inserts a vehicle for the given owner
func CreateTestVehicle(t *testing.T, db *gorm.DB, ownerID uint, plate string) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		Brand:        "Toyota",
		Model:        "Corolla",
		Year:         2019,
		LicensePlate: plate,
		OwnerID:      ownerID,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// CreateTestPart inserts an inventory part
func CreateTestPart(t *testing.T, db *gorm.DB, reference string, unitPrice float64) *models.InventoryPart {
	t.Helper()

	part := &models.InventoryPart{
		Name:      "Part " + reference,
		Reference: reference,
		Category:  models.CategoryEngine,
		Quantity:  10,
		UnitPrice: unitPrice,
	}
	require.NoError(t, db.Create(part).Error)
	return part
}

// CreateTestTaskTemplate inserts a task template
func CreateTestTaskTemplate(t *testing.T, db *gorm.DB, name string, price float64) *models.TaskTemplate {
	t.Helper()

	template := &models.TaskTemplate{
		Name:  name,
		Price: price,
	}
	require.NoError(t, db.Create(template).Error)
	return template
}

// CreateTestReport inserts a report authored by the given user
func CreateTestReport(t *testing.T, db *gorm.DB, vehicleID, userID uint, status models.ReportStatus) *models.Report {
	t.Helper()

	report := &models.Report{
		VehicleID: vehicleID,
		UserID:    userID,
		Status:    status,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}
