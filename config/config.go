package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Shared by the server and the terminal player; each reads the fields it needs.
type Config struct {
	ServerAddr string // HTTP listen address, e.g. ":3000"
	WebAppDir  string // Root directory for the web player UI

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Radio feed. The stream and metadata documents are produced by an
	// external CDN; we only consume them.
	StreamURL    string
	MetadataURL  string
	CoverURL     string
	PollInterval time.Duration

	// APIBaseURL is where the player finds the rating backend.
	APIBaseURL string

	// EnableRelay turns on the server-side now-playing relay
	// (poll the metadata feed and push it over /ws/nowplaying).
	EnableRelay bool

	FFplayPath string // Optional, for local playback from the terminal player

	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as time.Duration or returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		WebAppDir:  getEnv("WEBAPP_DIR", filepath.Join("web", "ui")),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "calicofm"),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StreamURL:    getEnv("STREAM_URL", "https://d3d4yli4hf5bmh.cloudfront.net/hls/live.m3u8"),
		MetadataURL:  getEnv("METADATA_URL", "https://d3d4yli4hf5bmh.cloudfront.net/metadatav2.json"),
		CoverURL:     getEnv("COVER_URL", "https://d3d4yli4hf5bmh.cloudfront.net/cover.jpg"),
		PollInterval: getEnvDuration("POLL_INTERVAL", 2*time.Second),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:3000"),

		EnableRelay: getEnvBool("ENABLE_RELAY", false),

		FFplayPath: getEnv("FFPLAY_PATH", "ffplay"),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
