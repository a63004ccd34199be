package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIBaseURL is the REST API base used when TAUSEPRO_API_URL is unset.
const DefaultAPIBaseURL = "http://localhost:8090/api/v1"

// Server captures the console BFF configuration.
type Server struct {
	Addr            string        `env:"TAUSEPRO_ADDR" envDefault:":3000"`
	Environment     string        `env:"TAUSEPRO_ENV" envDefault:"development"`
	LogLevel        string        `env:"TAUSEPRO_LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"TAUSEPRO_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"TAUSEPRO_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"TAUSEPRO_MAX_BODY_BYTES" envDefault:"1048576"`
	TrustedProxies  []string      `env:"TAUSEPRO_TRUSTED_PROXIES" envSeparator:","`
	SecureCookies   bool          `env:"TAUSEPRO_SECURE_COOKIES" envDefault:"false"`
	SessionIdleTTL  time.Duration `env:"TAUSEPRO_SESSION_IDLE_TTL" envDefault:"30m"`

	API     API
	Paywall Paywall
	Redis   RedisConfig
	Tracing Tracing
}

// API configures the outbound REST client.
type API struct {
	BaseURL          string        `env:"TAUSEPRO_API_URL" envDefault:"http://localhost:8090/api/v1"`
	Timeout          time.Duration `env:"TAUSEPRO_API_TIMEOUT" envDefault:"15s"`
	FailureThreshold int           `env:"TAUSEPRO_API_FAILURE_THRESHOLD" envDefault:"5"`
	Cooldown         time.Duration `env:"TAUSEPRO_API_COOLDOWN" envDefault:"10s"`
}

// Paywall configures the background usage refresher.
type Paywall struct {
	RefreshInterval time.Duration `env:"TAUSEPRO_USAGE_REFRESH_INTERVAL" envDefault:"5m"`
}

// RedisConfig is optional; an empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string        `env:"TAUSEPRO_REDIS_URL"`
	KeyPrefix    string        `env:"TAUSEPRO_REDIS_PREFIX" envDefault:"tausepro:session:"`
	SessionTTL   time.Duration `env:"TAUSEPRO_SESSION_TTL" envDefault:"168h"`
	PoolSize     int           `env:"TAUSEPRO_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"TAUSEPRO_REDIS_MIN_IDLE" envDefault:"2"`
	DialTimeout  time.Duration `env:"TAUSEPRO_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"TAUSEPRO_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"TAUSEPRO_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Tracing toggles the OpenTelemetry tracer. Disabled uses the noop tracer.
type Tracing struct {
	Enabled     bool   `env:"TAUSEPRO_TRACING_ENABLED" envDefault:"false"`
	ServiceName string `env:"TAUSEPRO_SERVICE_NAME" envDefault:"tausepro-console"`
}

// CLI configures adminctl.
type CLI struct {
	APIBaseURL  string        `env:"TAUSEPRO_API_URL" envDefault:"http://localhost:8090/api/v1"`
	Timeout     time.Duration `env:"TAUSEPRO_API_TIMEOUT" envDefault:"15s"`
	SessionFile string        `env:"TAUSEPRO_SESSION_FILE"`
	LogLevel    string        `env:"TAUSEPRO_LOG_LEVEL" envDefault:"warn"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds the server config so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	return cfg, nil
}

// CLIFromEnv builds the adminctl config.
func CLIFromEnv() (CLI, error) {
	var cfg CLI
	if err := ParseEnv(&cfg); err != nil {
		return CLI{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// ParsedTrustedProxies converts TrustedProxies into prefixes. Bare addresses
// become single-host prefixes.
func (s Server) ParsedTrustedProxies() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p)
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
