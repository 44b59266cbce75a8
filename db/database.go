package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"CalicoFM/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createRatingsTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

// Ping reports whether the database is reachable. Used by the health endpoint.
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.PingContext(ctx)
}

func createRatingsTable() error {
	// utf8mb4_bin keeps (artist, title) comparisons case-sensitive: "Song"
	// and "song" are distinct tracks.
	query := `
	CREATE TABLE IF NOT EXISTS song_ratings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		artist VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		user_fingerprint VARCHAR(255) NOT NULL,
		rating TINYINT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT uq_song_user UNIQUE (artist, title, user_fingerprint)
	) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create song_ratings table: %w", err)
	}
	log.Println("song_ratings table initialized successfully (or already exists).")
	return nil
}
