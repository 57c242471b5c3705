package main

import (
	"context"
	"errors"
	"log"
	"os"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/service"
	"study-tracker-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	models := model.All()
	log.Printf("Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Seed the first admin so someone can log in and create users
	if err := seedAdmin(context.Background(), db); err != nil {
		log.Fatalf("Error: Failed to seed admin user: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}

func seedAdmin(ctx context.Context, db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Println("Info: ADMIN_USERNAME/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@localhost"
	}

	user, err := service.NewUser(&dto.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		Admin:    true,
	})
	if err != nil {
		return err
	}

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	err = service.CreateUser(ctx, uow, user)
	if errors.Is(err, entity.ErrDuplicate) {
		log.Printf("Info: admin %s already exists", username)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("Seeded admin user %s", username)
	return nil
}
