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
	App          AppConfig
	Database     DatabaseConfig
	Storage      StorageConfig
	Notebook     NotebookConfig
	Provisioning ProvisioningConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	JwtSecret          string
	SummaryTopic       string // watermill topic for summary uploads
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	Driver       string // "local", "s3" or "none"
	MaxDepth     int
	LocalRoot    string
	LocalBaseURL string
	S3           S3Config
}

type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
	PublicBaseURL   string
}

type NotebookConfig struct {
	Driver         string // "rest" or "none"
	BaseURL        string
	APIKey         string
	RootFolderId   string
	PageSize       int
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

type ProvisioningConfig struct {
	CodePadding     int
	CodeAttempts    int
	PersistAttempts int
	CallTimeout     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			SummaryTopic:       getEnv("SUMMARY_UPLOAD_TOPIC_NAME", "UPLOAD_ENTITY_SUMMARY"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			MaxDepth:     getEnvAsInt("STORAGE_MAX_DEPTH", 3),
			LocalRoot:    getEnv("STORAGE_LOCAL_ROOT", "./storage-data"),
			LocalBaseURL: getEnv("STORAGE_LOCAL_BASE_URL", ""),
			S3: S3Config{
				Region:          getEnv("STORAGE_S3_REGION", "us-east-1"),
				Bucket:          getEnv("STORAGE_S3_BUCKET", ""),
				Endpoint:        getEnv("STORAGE_S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("STORAGE_S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("STORAGE_S3_SECRET_ACCESS_KEY", ""),
				SessionToken:    getEnv("STORAGE_S3_SESSION_TOKEN", ""),
				PathStyle:       getEnvAsBool("STORAGE_S3_PATH_STYLE", false),
				PublicBaseURL:   getEnv("STORAGE_S3_PUBLIC_BASE_URL", ""),
			},
		},
		Notebook: NotebookConfig{
			Driver:         strings.ToLower(getEnv("NOTEBOOK_DRIVER", "none")),
			BaseURL:        getEnv("NOTEBOOK_BASE_URL", ""),
			APIKey:         getEnv("NOTEBOOK_API_KEY", ""),
			RootFolderId:   getEnv("NOTEBOOK_ROOT_FOLDER_ID", ""),
			PageSize:       getEnvAsInt("NOTEBOOK_PAGE_SIZE", 50),
			RequestTimeout: getEnvAsDuration("NOTEBOOK_REQUEST_TIMEOUT", 30*time.Second),
			CacheTTL:       getEnvAsDuration("NOTEBOOK_CACHE_TTL", 5*time.Minute),
		},
		Provisioning: ProvisioningConfig{
			CodePadding:     getEnvAsInt("CODE_SEQUENCE_PADDING", 0),
			CodeAttempts:    getEnvAsInt("CODE_ATTEMPTS", 5),
			PersistAttempts: getEnvAsInt("CODE_PERSIST_ATTEMPTS", 3),
			CallTimeout:     getEnvAsDuration("BACKEND_CALL_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("45s") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
