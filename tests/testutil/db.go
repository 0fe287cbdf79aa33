package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens a private in-memory SQLite database with every table migrated.
// A single connection is used so concurrent callers share the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts an account row
func CreateUser(t *testing.T, db *gorm.DB, role, name string) models.User {
	t.Helper()

	id := uuid.NewString()
	user := models.User{
		ID:    id,
		Name:  name,
		Email: id + "@example.com",
		Role:  role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateCreator inserts a creator account with a profile
func CreateCreator(t *testing.T, db *gorm.DB, name string) (models.User, models.CreatorProfile) {
	t.Helper()

	user := CreateUser(t, db, models.RoleCreator, name)
	profile := models.CreatorProfile{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Name:            name,
		Location:        "Mumbai, India",
		FollowersCount:  10000,
		Niches:          models.Niches{"Fashion"},
		ProfilePhotoURL: "https://example.com/" + user.ID + ".jpg",
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to create creator profile: %v", err)
	}
	return user, profile
}

// CreateBusiness inserts a business account with a profile
func CreateBusiness(t *testing.T, db *gorm.DB, brandName string) (models.User, models.BusinessProfile) {
	t.Helper()

	user := CreateUser(t, db, models.RoleBusiness, brandName)
	profile := models.BusinessProfile{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		BrandName:       brandName,
		Category:        "Beauty",
		ProfilePhotoURL: "https://example.com/" + user.ID + ".png",
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to create business profile: %v", err)
	}
	return user, profile
}

// Actor returns the calling identity of user
func Actor(user models.User) models.Actor {
	return models.Actor{ID: user.ID, Role: user.Role}
}
