package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DB       *DBconfig       `yaml:"db"`
	Redis    *Redisconfig    `yaml:"redis"`
	RabbitMq *RabbitMqconfig `yaml:"rabbitmq"`
	Srv      *Serviceconfig  `yaml:"server"`
	App      *Appconfig      `yaml:"app"`
	OAuth    *OAuthconfig    `yaml:"oauth"`
	Storage  *Storageconfig  `yaml:"storage"`
	Log      *Loggerconfig   `yaml:"log"`
}

type DBconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int    `yaml:"max_conns"`
}

type Redisconfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMqconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
}

type Serviceconfig struct {
	BookingServicePort string   `yaml:"booking_service"`
	PublicURL          string   `yaml:"public_url"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
}

type Appconfig struct {
	JwtSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	ResetTTL      time.Duration `yaml:"reset_ttl"`
	CheckoutTTL   time.Duration `yaml:"checkout_ttl"`
	RedirectDelay time.Duration `yaml:"redirect_delay"`
}

type OAuthconfig struct {
	Provider      string `yaml:"provider"`
	AuthorizeURL  string `yaml:"authorize_url"`
	ClientID      string `yaml:"client_id"`
	IDTokenSecret string `yaml:"id_token_secret"`
}

type Storageconfig struct {
	Root   string `yaml:"root"`
	Bucket string `yaml:"bucket"`
}

type Loggerconfig struct {
	Level string `yaml:"level"`
}

// DSN builds the postgres connection string.
func (c *DBconfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c *RabbitMqconfig) URL() string {
	return fmt.Sprintf("amqp://%v:%v@%v:%v/%v",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		strings.TrimPrefix(c.VHost, "/"),
	)
}

// New reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("cannot parse %s, using default %v\n", key, def)
			return def
		}
		return val
	}

	getEnvDuration := func(key string, def time.Duration) time.Duration {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := time.ParseDuration(valStr)
		if err != nil {
			fmt.Printf("cannot parse %s, using default %v\n", key, def)
			return def
		}
		return val
	}

	getEnvList := func(key string, def []string) []string {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		var out []string
		for _, part := range strings.Split(valStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "booking_user"),
			Password: getEnv("DB_PASSWORD", "booking_pass"),
			Database: getEnv("DB_NAME", "booking_db"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: &Redisconfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "booking_topic"),
		},
		Srv: &Serviceconfig{
			BookingServicePort: getEnv("BOOKING_SERVICE_PORT", "3000"),
			PublicURL:          getEnv("PUBLIC_URL", "http://localhost:3000"),
			AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		App: &Appconfig{
			JwtSecret:     getEnv("JWT_SECRET", ""),
			SessionTTL:    getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			ResetTTL:      getEnvDuration("RESET_TTL", time.Hour),
			CheckoutTTL:   getEnvDuration("CHECKOUT_TTL", 30*time.Minute),
			RedirectDelay: getEnvDuration("REDIRECT_DELAY", 3*time.Second),
		},
		OAuth: &OAuthconfig{
			Provider:      getEnv("OAUTH_PROVIDER", "google"),
			AuthorizeURL:  getEnv("OAUTH_AUTHORIZE_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			ClientID:      getEnv("OAUTH_CLIENT_ID", ""),
			IDTokenSecret: getEnv("OAUTH_ID_TOKEN_SECRET", ""),
		},
		Storage: &Storageconfig{
			Root:   getEnv("STORAGE_ROOT", "data/storage"),
			Bucket: getEnv("STORAGE_BUCKET", "driver-documents"),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, cnf.Validate()
}

// NewFromYAML loads the configuration from a YAML file. Sections missing
// from the file fall back to the environment defaults.
func NewFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cnf, err := New()
	if err != nil && !errors.Is(err, ErrEmptyJwtSecret) {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cnf); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cnf, cnf.Validate()
}

var (
	ErrEmptyJwtSecret = errors.New("jwt secret is empty")
	ErrInvalidPort    = errors.New("port must be positive")
)

func (c *Config) Validate() error {
	if c.App == nil || c.App.JwtSecret == "" {
		return ErrEmptyJwtSecret
	}
	if c.DB == nil || c.DB.Port <= 0 {
		return fmt.Errorf("db: %w", ErrInvalidPort)
	}
	if c.RabbitMq == nil || c.RabbitMq.Port <= 0 {
		return fmt.Errorf("rabbitmq: %w", ErrInvalidPort)
	}
	if c.Srv == nil {
		return fmt.Errorf("server: %w", ErrInvalidPort)
	}
	if port, err := strconv.Atoi(c.Srv.BookingServicePort); err != nil || port <= 0 {
		return fmt.Errorf("server: %w", ErrInvalidPort)
	}
	return nil
}
