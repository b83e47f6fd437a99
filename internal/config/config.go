package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Cache      CacheConfig
	Users      UsersConfig
	Database   DatabaseConfig
	Relational RelationalConfig
	Sheets     SheetsConfig
	Images     ImagesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string            `envconfig:"APP_NAME" default:"stockcount-api"`
	Environment string            `envconfig:"APP_ENV" default:"development"`
	Debug       bool              `envconfig:"APP_DEBUG" default:"false"`
	Version     string            `envconfig:"APP_VERSION" default:"1.0.0"`
	SecretKey   string            `envconfig:"SECRET_KEY" default:"dev-secret-key-change-in-production"`
	Timezone    string            `envconfig:"APP_TIMEZONE" default:"Asia/Bangkok"`
	Branches    map[string]string `envconfig:"BRANCHES" default:"MAIN:สาขาหลัก,CITY:สาขาตัวเมือง,PONGPAI:สาขาโป่งไผ่,SCHOOL:สาขาหน้าโรงเรียน"`
}

// CacheConfig holds session store settings.
type CacheConfig struct {
	Type       string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// UsersConfig selects where login accounts come from.
type UsersConfig struct {
	Source string `envconfig:"USERS_SOURCE" default:"static"` // static or mysql
	// username:password:role entries, comma separated
	Static []string `envconfig:"USERS" default:"admin:admin123:admin,staff:staff123:staff"`
}

// DatabaseConfig holds MySQL connection settings (for user accounts).
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"stockcount"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// RelationalConfig holds settings for the relational record backend.
type RelationalConfig struct {
	Type    string        `envconfig:"RELATIONAL_DB_TYPE" default:"sqlite"` // supabase, postgres, sqlite or none
	Timeout time.Duration `envconfig:"RELATIONAL_TIMEOUT" default:"15s"`

	// Supabase REST settings
	SupabaseURL string `envconfig:"SUPABASE_URL" default:"https://your-project.supabase.co"`
	SupabaseKey string `envconfig:"SUPABASE_ANON_KEY" default:"your-anon-key"`

	// SQLite settings
	Path string `envconfig:"RELATIONAL_DB_PATH" default:"./data/stock.db"`

	// PostgreSQL settings
	Host     string `envconfig:"RELATIONAL_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"RELATIONAL_DB_PORT" default:"5432"`
	Name     string `envconfig:"RELATIONAL_DB_NAME" default:"postgres"`
	User     string `envconfig:"RELATIONAL_DB_USER" default:"postgres"`
	Password string `envconfig:"RELATIONAL_DB_PASS" default:""`
	SSLMode  string `envconfig:"RELATIONAL_DB_SSLMODE" default:"disable"`
}

// SheetsConfig holds Google Sheets settings.
type SheetsConfig struct {
	CredentialsFile  string        `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"credentials.json"`
	ProductSheetID   string        `envconfig:"PRODUCT_SHEET_ID" default:"your-product-sheet-id"`
	StockSheetID     string        `envconfig:"STOCK_SHEET_ID" default:"your-stock-sheet-id"`
	ProductSheetName string        `envconfig:"PRODUCT_SHEET_NAME" default:"Sheet1"`
	StockSheetName   string        `envconfig:"STOCK_SHEET_NAME" default:"Sheet1"`
	Timeout          time.Duration `envconfig:"SHEETS_TIMEOUT" default:"15s"`
	InitHeaders      bool          `envconfig:"SHEETS_INIT_HEADERS" default:"false"`
}

// ImagesConfig holds settings for the photo upload chain.
type ImagesConfig struct {
	AppsScriptURL     string        `envconfig:"APPS_SCRIPT_URL" default:""`
	AppsScriptTimeout time.Duration `envconfig:"APPS_SCRIPT_TIMEOUT" default:"30s"`
	RootFolder        string        `envconfig:"PHOTO_ROOT_FOLDER" default:"Check Stock Project"`

	DriveCredentialsFile string        `envconfig:"DRIVE_OAUTH_CREDENTIALS_FILE" default:"oauth2_credentials.json"`
	DriveTokenFile       string        `envconfig:"DRIVE_TOKEN_FILE" default:"drive_token.json"`
	DriveTimeout         time.Duration `envconfig:"DRIVE_TIMEOUT" default:"30s"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (r *RelationalConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		r.User, r.Password, r.Host, r.Port, r.Name, r.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Location resolves the configured timezone, falling back to UTC.
func (a *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
