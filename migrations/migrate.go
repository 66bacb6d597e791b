package main

import (
	"flag"
	"log"
	"os"

	"cryptotracker/src/config"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dir := flag.String("dir", "./migrations", "directory with goose migrations")
	command := flag.String("command", "up", "goose command: up, down, status, reset")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("Error loading config for environment: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Databases.SQL.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB from GORM DB: %v", err)
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	if err := goose.Run(*command, sqlDB, *dir); err != nil {
		log.Fatalf("Failed to run migrations (%s): %v", *command, err)
	}

	log.Printf("Database migration %q completed successfully", *command)
}
