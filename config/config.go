package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	HTTPAddr  string
	WebAppDir string // Path to the web application's UI files

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Deezer API
	DeezerAPIURL string

	// Twitch OAuth (display names only)
	TwitchClientID     string
	TwitchClientSecret string
	TwitchRedirectURI  string

	// JWTSecret signs the short-lived display-name tokens minted after OAuth.
	JWTSecret string

	// ModeratorKey gates the moderator role on the websocket. Empty disables the check.
	ModeratorKey string

	// SongsImportPath is the CSV file resolved by /api/import-songs.
	SongsImportPath string

	// Default room settings, adjustable at runtime by the moderator.
	ExtractDurationMs int
	AnswerWindowMs    int
	BasePoints        int
	AnswerCooldownMs  int

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

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		WebAppDir: getEnv("WEB_APP_DIR", "web/ui"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "blindtest"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "blindtest"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DeezerAPIURL: getEnv("DEEZER_API_URL", "https://api.deezer.com"),

		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		TwitchRedirectURI:  os.Getenv("TWITCH_REDIRECT_URI"),

		JWTSecret:    getEnv("JWT_SECRET", "blindtest-dev-secret"),
		ModeratorKey: os.Getenv("MODERATOR_KEY"),

		SongsImportPath: getEnv("SONGS_IMPORT_PATH", "songs_import.csv"),

		ExtractDurationMs: getEnvInt("EXTRACT_DURATION_MS", 15000),
		AnswerWindowMs:    getEnvInt("ANSWER_WINDOW_MS", 15000),
		BasePoints:        getEnvInt("BASE_POINTS", 1000),
		AnswerCooldownMs:  getEnvInt("ANSWER_COOLDOWN_MS", 800),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
