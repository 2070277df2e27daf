package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultConfigFile = "config.toml"

// Document store backends
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Generative text providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Firebase      FirebaseConfig
	Documents     DocumentsConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// FirebaseConfig holds Firebase Authentication and project settings
type FirebaseConfig struct {
	ProjectID         string
	ServiceAccountKey string // path to the service account JSON key
	JWKSURL           string
	KeyCacheTTL       time.Duration
	HTTPTimeout       time.Duration
}

// DocumentsConfig selects where profile documents are read from
type DocumentsConfig struct {
	Backend             string
	ProfileCollection   string
	FirestoreDatabaseID string
	InitSchema          bool // create the postgres documents table on startup
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ProvidersConfig holds generative text provider configurations
type ProvidersConfig struct {
	Default string
	Gemini  GeminiConfig
	OpenAI  OpenAIConfig
}

// GeminiConfig holds Gemini provider configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI provider configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	OrgID   string
	Timeout time.Duration
}

// CORSConfig holds browser cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// fileConfig mirrors config.toml
type fileConfig struct {
	Firebase struct {
		ServiceAccountKey string `toml:"service_account_key"`
		ProjectID         string `toml:"project_id"`
	} `toml:"firebase"`
	Gemini struct {
		APIKey string `toml:"api_key"`
		Model  string `toml:"model"`
	} `toml:"gemini"`
}

// New creates a new Config instance from .env, an optional TOML file and
// environment variables, in increasing order of precedence.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	file, err := loadFile()
	if err != nil {
		return nil, err
	}

	serviceAccountKey := firstNonEmpty(
		os.Getenv("FIREBASE_SERVICE_ACCOUNT_KEY"),
		file.Firebase.ServiceAccountKey,
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	)

	projectID := firstNonEmpty(
		os.Getenv("FIREBASE_PROJECT_ID"),
		file.Firebase.ProjectID,
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
	)
	if projectID == "" && serviceAccountKey != "" {
		projectID, err = projectIDFromServiceAccount(serviceAccountKey)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			TLS: struct {
				Enabled  bool
				CertFile string
				KeyFile  string
			}{
				Enabled:  getEnvAsBool("TLS_ENABLED", false),
				CertFile: getEnv("TLS_CERT_FILE", "certs/cert.pem"),
				KeyFile:  getEnv("TLS_KEY_FILE", "certs/key.pem"),
			},
		},
		Firebase: FirebaseConfig{
			ProjectID:         projectID,
			ServiceAccountKey: serviceAccountKey,
			JWKSURL:           getEnv("FIREBASE_JWKS_URL", ""),
			KeyCacheTTL:       getEnvAsDuration("FIREBASE_KEY_CACHE_TTL", time.Hour),
			HTTPTimeout:       getEnvAsDuration("FIREBASE_HTTP_TIMEOUT", 10*time.Second),
		},
		Documents: DocumentsConfig{
			Backend:             strings.ToLower(getEnv("DOCUMENT_BACKEND", BackendFirestore)),
			ProfileCollection:   getEnv("PROFILE_COLLECTION", "users"),
			FirestoreDatabaseID: getEnv("FIRESTORE_DATABASE_ID", ""),
			InitSchema:          getEnvAsBool("DB_INIT_SCHEMA", false),
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			Default: strings.ToLower(getEnv("PROVIDER", ProviderGemini)),
			Gemini: GeminiConfig{
				APIKey:  getEnv("GEMINI_API_KEY", file.Gemini.APIKey),
				Model:   getEnv("GEMINI_MODEL", firstNonEmpty(file.Gemini.Model, "gemini-1.5-flash")),
				BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			},
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				OrgID:   getEnv("OPENAI_ORG_ID", ""),
				Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Documents.Backend {
	case BackendFirestore:
		if c.Firebase.ProjectID == "" && c.IsProduction() {
			return fmt.Errorf("firebase project ID is required for the firestore backend")
		}
	case BackendPostgres:
		if c.Database.ConnectionString == "" && c.Database.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		}
		if c.Database.ConnectionString == "" {
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	default:
		return fmt.Errorf("unknown document backend %q", c.Documents.Backend)
	}

	if c.Documents.ProfileCollection == "" {
		return fmt.Errorf("profile collection is required")
	}

	switch c.Providers.Default {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Providers.Default)
	}

	if c.IsProduction() {
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project ID is required in production")
		}
		if c.Providers.APIKey(c.Providers.Default) == "" {
			return fmt.Errorf("%s API key is required in production", c.Providers.Default)
		}
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// APIKey returns the configured key of the named provider
func (p *ProvidersConfig) APIKey(name string) string {
	switch name {
	case ProviderGemini:
		return p.Gemini.APIKey
	case ProviderOpenAI:
		return p.OpenAI.APIKey
	default:
		return ""
	}
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadFile reads CONFIG_FILE, or config.toml when unset. Only an explicitly
// named file is required to exist.
func loadFile() (*fileConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return &file, nil
}

// projectIDFromServiceAccount reads project_id from a service account key file
func projectIDFromServiceAccount(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read service account key: %w", err)
	}

	var key struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return "", fmt.Errorf("failed to parse service account key: %w", err)
	}
	return key.ProjectID, nil
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dev"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "gemini_chat"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8000
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
