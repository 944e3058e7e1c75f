package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Mongo         MongoConfig
	Firebase      FirebaseConfig
	JWT           JWTConfig
	Cloudinary    CloudinaryConfig
	API           APIConfig
	Realtime      RealtimeConfig
	Notifications NotificationsConfig
	Dashboard     DashboardConfig
	Admin         AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    int
	RateWindow   time.Duration
}

// DatabaseConfig selects the storage backend. Backend is one of
// "mysql", "sqlite", "firestore", "mongo" or "memory".
type DatabaseConfig struct {
	Backend         string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type FirebaseConfig struct {
	ProjectID          string
	ServiceAccountPath string
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// APIConfig is used by REST consumers of this service (pkg/apiclient).
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RealtimeConfig drives the feed adapter. Mode "socket" dials URL, anything
// else uses the null source.
type RealtimeConfig struct {
	Mode         string
	URL          string
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

type NotificationsConfig struct {
	DemoFallback bool
	ListLimit    int
}

type DashboardConfig struct {
	FetchTimeout time.Duration
}

// AdminConfig bootstraps the first admin account on startup when both fields are set.
type AdminConfig struct {
	Email    string
	Password string
}

const defaultAPIBaseURL = "http://localhost:8099/api"

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[CONFIG] loaded .env")
	}
	env := getEnv("ENV", "development")
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          env,
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 10*time.Second),
			RateLimit:    getInt("RATE_LIMIT", 100),
			RateWindow:   getDuration("RATE_WINDOW", 60*time.Second),
		},
		Database: DatabaseConfig{
			Backend:         strings.ToLower(getEnv("DATA_BACKEND", "mysql")),
			DSN:             getEnv("DATABASE_DSN", "root:@tcp(localhost:3306)/bloodalert?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "bloodalert"),
		},
		Firebase: FirebaseConfig{
			ProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_EXPIRY", 24*time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "bloodalert"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "bloodalert/campaigns"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", defaultAPIBaseURL),
			Timeout: getDuration("API_TIMEOUT", 15*time.Second),
		},
		Realtime: RealtimeConfig{
			Mode:         strings.ToLower(getEnv("REALTIME_MODE", "null")),
			URL:          getEnv("REALTIME_URL", "ws://localhost:8099/ws/notifications"),
			ReconnectMin: getDuration("REALTIME_RECONNECT_MIN", time.Second),
			ReconnectMax: getDuration("REALTIME_RECONNECT_MAX", 30*time.Second),
		},
		Notifications: NotificationsConfig{
			DemoFallback: getBool("NOTIFICATIONS_DEMO_FALLBACK", env != "production"),
			ListLimit:    getInt("NOTIFICATIONS_LIST_LIMIT", 50),
		},
		Dashboard: DashboardConfig{
			FetchTimeout: getDuration("DASHBOARD_FETCH_TIMEOUT", 10*time.Second),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
