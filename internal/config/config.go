package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aitwy/aitwy-server/pkg/logger"
)

type Config struct {
	Server      ServerConfig    `envPrefix:"SERVER_"`
	Database    DatabaseConfig
	Auth        AuthConfig
	Email       EmailConfig     `envPrefix:"EMAIL_"`
	Redis       RedisConfig     `envPrefix:"REDIS_"`
	RateLimit   RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Kafka       KafkaConfig     `envPrefix:"KAFKA_"`
	Log         logger.Config   `envPrefix:"LOG_"`
	FrontendURL string          `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

type ServerConfig struct {
	Host         string   `env:"HOST" envDefault:"0.0.0.0"`
	Port         string   `env:"PORT" envDefault:"5001"`
	ExposeErrors bool     `env:"EXPOSE_ERRORS" envDefault:"false"`
	PprofEnabled bool     `env:"PPROF_ENABLED" envDefault:"false"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:","`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// DatabaseConfig keeps the variable names the previous deployment used.
type DatabaseConfig struct {
	URI                    string        `env:"MONGODB_URI,required,notEmpty"`
	Name                   string        `env:"DB_NAME" envDefault:"aitwy"`
	MaxPoolSize            uint64        `env:"DATABASE_MAX_POOL_SIZE" envDefault:"10"`
	ServerSelectionTimeout time.Duration `env:"DATABASE_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`
	SocketTimeout          time.Duration `env:"DATABASE_SOCKET_TIMEOUT" envDefault:"45s"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL        time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"`
	VerificationTTL time.Duration `env:"AUTH_VERIFICATION_TTL" envDefault:"24h"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
}

type EmailConfig struct {
	Service  string `env:"SERVICE" envDefault:"gmail"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"\"AITWY\" <noreply@aitwy.com>"`
}

// HasCredentials reports whether a real SMTP transport should be used.
func (e EmailConfig) HasCredentials() bool {
	return e.User != "" && e.Password != ""
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
}

type RateLimitConfig struct {
	Limit  int           `env:"LIMIT" envDefault:"20"`
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"aitwy.account-events"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

var ErrPlaceholderURI = errors.New("MONGODB_URI still contains <db_username> or <db_password> placeholders")

func (c *Config) Validate() error {
	if strings.Contains(c.Database.URI, "<db_username>") || strings.Contains(c.Database.URI, "<db_password>") {
		return ErrPlaceholderURI
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.VerificationTTL <= 0 {
		return errors.New("auth ttl values must be positive")
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	if len(c.Server.CORSOrigins) == 0 && c.FrontendURL != "" {
		c.Server.CORSOrigins = []string{c.FrontendURL}
	}
	return nil
}

// ClientConfig configures the dashboard CLI.
type ClientConfig struct {
	AuthAPIURL    string        `env:"AITWY_API_URL" envDefault:"http://localhost:5001/api"`
	ChatbotAPIURL string        `env:"AITWY_CHATBOT_API_URL" envDefault:"http://localhost:8000"`
	SessionFile   string        `env:"AITWY_SESSION_FILE"`
	Timeout       time.Duration `env:"AITWY_HTTP_TIMEOUT" envDefault:"30s"`
}

func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.AuthAPIURL = strings.TrimRight(cfg.AuthAPIURL, "/")
	cfg.ChatbotAPIURL = strings.TrimRight(cfg.ChatbotAPIURL, "/")
	return cfg, nil
}
