package main

import (
	"log"
	"os"

	"documind-be/internal/model"
	"documind-be/pkg/database"

	"github.com/joho/godotenv"
)

// Creates or updates the sessions and chat_turns tables. Safe to rerun,
// AutoMigrate only adds what is missing.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// chat_turns ids default to gen_random_uuid()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to enable pgcrypto: %v. Continuing...", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&model.Session{}, &model.ChatTurn{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed.")
}
