package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBDSN         string
	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string
	OpenAIAPIKey  string
	AdminEmails   []string
	LogLevel      string
	LogFormat     string

	RateLimitPerMinute int
	RateLimitBackend   string

	RevisionExtensionDays int
	MaxUploadMB           int64

	Storage StorageConfig
}

// StorageConfig selects and configures the blob store adapter.
type StorageConfig struct {
	Provider  string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
	UseSSL    bool
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"GIN_MODE":                "debug",
	"DB_DRIVER":               "mysql",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "3306",
	"DB_USER":                 "taskuser",
	"DB_PASSWORD":             "taskpassword",
	"DB_NAME":                 "task_desk",
	"DB_DSN":                  "task_desk.db",
	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              "6379",
	"SESSION_STORE":           "redis",
	"SESSION_SECRET":          "default-secret-key-change-me",
	"OPENAI_API_KEY":          "",
	"ADMIN_EMAILS":            "",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"RATE_LIMIT_PER_MINUTE":   60,
	"RATE_LIMIT_BACKEND":      "memory",
	"REVISION_EXTENSION_DAYS": 3,
	"MAX_UPLOAD_MB":           25,
	"STORAGE_PROVIDER":        "filesystem",
	"STORAGE_BUCKET":          "./uploads",
	"STORAGE_ENDPOINT":        "",
	"STORAGE_REGION":          "us-east-1",
	"STORAGE_ACCESS_KEY":      "",
	"STORAGE_SECRET_KEY":      "",
	"STORAGE_PUBLIC_URL":      "http://localhost:8080/uploads",
	"STORAGE_USE_SSL":         false,
}

// Load reads configuration from the environment, an optional .env file and an
// optional config file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		DBDriver:              strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBDSN:                 v.GetString("DB_DSN"),
		RedisHost:             v.GetString("REDIS_HOST"),
		RedisPort:             v.GetString("REDIS_PORT"),
		SessionStore:          strings.ToLower(v.GetString("SESSION_STORE")),
		SessionSecret:         v.GetString("SESSION_SECRET"),
		OpenAIAPIKey:          v.GetString("OPENAI_API_KEY"),
		AdminEmails:           splitList(v.GetString("ADMIN_EMAILS")),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		RateLimitPerMinute:    v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RateLimitBackend:      strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
		RevisionExtensionDays: v.GetInt("REVISION_EXTENSION_DAYS"),
		MaxUploadMB:           v.GetInt64("MAX_UPLOAD_MB"),
		Storage: StorageConfig{
			Provider:  strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			Region:    v.GetString("STORAGE_REGION"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			PublicURL: v.GetString("STORAGE_PUBLIC_URL"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
	}
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "redis", "cookie":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if c.RevisionExtensionDays <= 0 {
		return fmt.Errorf("REVISION_EXTENSION_DAYS must be greater than 0")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be greater than 0")
	}
	return nil
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
