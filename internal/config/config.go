package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	Auth         `yaml:"auth"`
	Cache        `yaml:"cache"`
	Analytics    `yaml:"analytics"`
}

// HTTPServer holds HTTP listener configuration.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_SERVER_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_SERVER_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Database holds storage configuration. Driver is one of postgres, sqlite or memory.
type Database struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"shortener"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string        `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	SQLitePath      string        `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"shortener.db"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	ConnMaxLifetime string        `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	OpTimeout       time.Duration `yaml:"op_timeout" env:"DB_OP_TIMEOUT" env-default:"5s"`
}

// URLShortener holds service-specific configuration.
type URLShortener struct {
	// BaseURL is prepended to short codes in API responses.
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
}

// Auth holds JWT verification settings.
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"shortener"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Cache configures the link lookup cache. Driver is one of none, memory or redis.
type Cache struct {
	Driver        string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

// Analytics configures click enrichment and the retry worker pool.
type Analytics struct {
	// ClickFailurePolicy is "defer" (hand failed inserts to the retry queue) or "fail" (answer 500).
	ClickFailurePolicy string        `yaml:"click_failure_policy" env:"CLICK_FAILURE_POLICY" env-default:"defer"`
	Workers            int           `yaml:"workers" env:"ANALYTICS_WORKERS" env-default:"2"`
	BufferSize         int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts      int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay         time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"100ms"`
	UserAgentRegexes   string        `yaml:"useragent_regexes" env:"USERAGENT_REGEXES"`
	GeoIPDB            string        `yaml:"geoip_db" env:"GEOIP_DB"`
}

const (
	ClickPolicyDefer = "defer"
	ClickPolicyFail  = "fail"
)

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Load reads the config file at path, falling back to environment variables
// when the file does not exist.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else {
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Cache.Driver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Analytics.ClickFailurePolicy {
	case ClickPolicyDefer, ClickPolicyFail:
	default:
		return fmt.Errorf("unknown click failure policy %q", c.Analytics.ClickFailurePolicy)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set")
	}
	return nil
}
