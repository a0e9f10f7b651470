package main

import (
	"log"
	"os"

	"jyotchat-be/internal/model"
	"jyotchat-be/pkg/database"

	"github.com/joho/godotenv"
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
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate
	log.Println("Running AutoMigrate for chat_logs...")
	if err := db.AutoMigrate(&model.ChatLog{}); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Success: Migration completed.")
}
