package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"med-field-force/internal/capture"
	"med-field-force/internal/repository"
	"med-field-force/internal/services"
)

// Storage backends selectable with STORE_BACKEND
const (
	BackendPocketBase = "pocketbase"
	BackendMongo      = "mongo"
	BackendMySQL      = "mysql"
	BackendMemory     = "memory"
)

type Config struct {
	HTTPAddr string

	// Persistence
	StoreBackend    string
	PocketBaseURL   string // PocketBase server URL (e.g., http://192.168.100.100:8090)
	PocketBaseToken string // Auth token for API access
	MongoURI        string
	MongoDB         string
	MySQLDSN        string

	// Attendance photos; empty bucket keeps each photo in its own state blob
	S3 repository.S3Config

	// Telegram Bot
	TelegramBotToken string
	AuthorizedChatID string

	JWTSecret string
	// Phones allowed to register as managers without a roster entry
	ManagerPhones []string

	GeminiAPIKey string
	GeminiModel  string

	Attendance     services.AttendanceConfig
	CaptureTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv.Load() error: %v", err)
	}

	cfg := &Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		StoreBackend:    strings.ToLower(getenv("STORE_BACKEND", BackendPocketBase)),
		PocketBaseURL:   getenv("POCKETBASE_URL", "http://127.0.0.1:8090"),
		PocketBaseToken: os.Getenv("POCKETBASE_TOKEN"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "elder_field_force"),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),
		S3: repository.S3Config{
			APIKey:   os.Getenv("S3_API_KEY"),
			Secret:   os.Getenv("S3_SECRET"),
			Endpoint: os.Getenv("S3_ENDPOINT"),
			Region:   getenv("S3_REGION", "ap-south-1"),
			Bucket:   os.Getenv("S3_BUCKET"),
		},
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		ManagerPhones:    splitList(os.Getenv("MANAGER_PHONES")),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		Attendance:       services.DefaultAttendanceConfig(),
		CaptureTimeout:   capture.DefaultTimeout,
	}

	switch cfg.StoreBackend {
	case BackendPocketBase, BackendMongo, BackendMemory:
	case BackendMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required for the %s backend", BackendMySQL)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	att := &cfg.Attendance
	if att.Office.Lat, err = getFloat("OFFICE_LAT", att.Office.Lat); err != nil {
		return nil, err
	}
	if att.Office.Lng, err = getFloat("OFFICE_LNG", att.Office.Lng); err != nil {
		return nil, err
	}
	if att.RadiusMeters, err = getFloat("GEOFENCE_RADIUS_METERS", att.RadiusMeters); err != nil {
		return nil, err
	}
	if att.EnforceWindows, err = getBool("ENFORCE_ATTENDANCE_WINDOWS", att.EnforceWindows); err != nil {
		return nil, err
	}
	if att.LoginWindow, err = getWindow("LOGIN_WINDOW", att.LoginWindow); err != nil {
		return nil, err
	}
	if att.LogoutWindow, err = getWindow("LOGOUT_WINDOW", att.LogoutWindow); err != nil {
		return nil, err
	}
	if v := os.Getenv("CAPTURE_TIMEOUT"); v != "" {
		if cfg.CaptureTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("CAPTURE_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getWindow(key string, fallback services.Window) (services.Window, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	w, err := services.ParseWindow(fallback.Name, v)
	if err != nil {
		return services.Window{}, fmt.Errorf("%s: %w", key, err)
	}
	return w, nil
}

// splitList parses a comma separated list, dropping empty entries
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
