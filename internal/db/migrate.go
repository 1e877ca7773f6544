package db

import (
	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Offer{})
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
	return db
}

// SeedAdmin provisions exactly one admin account. If any admin user
// already exists the routine is a no-op.
func SeedAdmin(db *gorm.DB, handle, email, password string) error {
	var existing domain.User // Look for an existing admin
	if err := db.Where("is_admin = ?", true).First(&existing).Error; err == nil {
		logrus.Info("Admin user already exists") // Nothing to do
		return nil
	}
	// Hash the initial password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err // Return error if hashing fails
	}
	// Create the admin account with placeholder profile fields
	admin := domain.User{
		Handle:      handle,        // Configured handle
		Username:    handle,        // Username defaults to the handle
		Email:       email,         // Configured email
		Phone:       "0000000000",  // Placeholder phone
		Password:    string(hash),  // Hashed password
		City:        "Admin City",  // Placeholder city
		State:       "Admin State", // Placeholder state
		ClassName:   "Admin",       // Placeholder class
		IsAdmin:     true,          // Admin flag
	}
	if err := db.Create(&admin).Error; err != nil {
		return err // Return error if creation fails
	}
	logrus.WithField("handle", handle).Info("Admin user created") // Log successful seed
	return nil
}
