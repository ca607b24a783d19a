package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	QueueMemory   = "memory"
	QueueRabbitMQ = "rabbitmq"

	maxImportWorkers = 10
)

var ErrInvalidConfig = errors.New("invalid configuration")

type ImportOptions struct {
	Queue              string        `env:"IMPORT_QUEUE" envDefault:"memory"`
	Workers            int           `env:"IMPORT_WORKERS" envDefault:"1"`
	QueueCapacity      int           `env:"IMPORT_QUEUE_CAPACITY" envDefault:"100"`
	RowDelay           time.Duration `env:"IMPORT_ROW_DELAY" envDefault:"200ms"`
	PreviewRows        int           `env:"IMPORT_PREVIEW_ROWS" envDefault:"100"`
	DefaultCountryCode string        `env:"IMPORT_DEFAULT_COUNTRY_CODE" envDefault:"+91"`
	Timezone           string        `env:"IMPORT_TIMEZONE" envDefault:"Local"`
	DraftRetention     time.Duration `env:"IMPORT_DRAFT_RETENTION" envDefault:"168h"`
	SweepInterval      time.Duration `env:"IMPORT_SWEEP_INTERVAL" envDefault:"24h"`
	UseCopy            bool          `env:"IMPORT_USE_COPY" envDefault:"true"`
}

type RegistrationOptions struct {
	ServiceURL string        `env:"REGISTRATION_SERVICE_URL"`
	Timeout    time.Duration `env:"REGISTRATION_TIMEOUT" envDefault:"30s"`
}

type RetryOptions struct {
	MaxRetries int           `env:"RETRY_MAX_RETRIES" envDefault:"5"`
	BaseDelay  time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	Multiplier float64       `env:"RETRY_MULTIPLIER" envDefault:"2"`
}

type RabbitMQOptions struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"bulk_imports"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"bulk_imports.execute"`
	Queue      string `env:"RABBITMQ_QUEUE" envDefault:"bulk_imports.execute"`
}

type S3Options struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET" envDefault:"bulk-imports"`
	Secure    bool   `env:"S3_SECURE" envDefault:"false"`
}

type Configuration struct {
	Import       ImportOptions
	Registration RegistrationOptions
	Retry        RetryOptions
	RabbitMQ     RabbitMQOptions
	S3           S3Options

	DatabaseURL    string        `env:"DATABASE_URL"`
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	MaxUploadSize  string        `env:"MAX_UPLOAD_SIZE" envDefault:"10M"`
	RedisURL       string        `env:"REDIS_URL"`
	AccountLockTTL time.Duration `env:"ACCOUNT_LOCK_TTL" envDefault:"30m"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadEnv loads the env files that exist, in order. Variables already set in
// the process environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the environment into a validated Configuration.
func Load() (*Configuration, error) {
	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Configuration, error) {
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) normalize() {
	c.Import.Queue = strings.ToLower(strings.TrimSpace(c.Import.Queue))
	if c.Import.Workers <= 0 {
		c.Import.Workers = 1
	}
	if c.Import.Workers > maxImportWorkers {
		c.Import.Workers = maxImportWorkers
	}
}

func (c *Configuration) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalidConfig)
	}
	switch c.Import.Queue {
	case QueueMemory:
	case QueueRabbitMQ:
		if strings.TrimSpace(c.RabbitMQ.URL) == "" {
			return fmt.Errorf("%w: RABBITMQ_URL is required when IMPORT_QUEUE is rabbitmq", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: IMPORT_QUEUE must be 'memory' or 'rabbitmq', got '%s'", ErrInvalidConfig, c.Import.Queue)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: IMPORT_TIMEZONE: %v", ErrInvalidConfig, err)
	}
	if _, err := c.UploadLimitBytes(); err != nil {
		return fmt.Errorf("%w: MAX_UPLOAD_SIZE: %v", ErrInvalidConfig, err)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: RETRY_MAX_RETRIES must be non-negative, got %d", ErrInvalidConfig, c.Retry.MaxRetries)
	}
	return nil
}

// Location is the zone naive spreadsheet dates are interpreted in.
func (c *Configuration) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Import.Timezone)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// UploadLimitBytes converts MAX_UPLOAD_SIZE ("10M", "512K", "1G", "2048")
// to bytes.
func (c *Configuration) UploadLimitBytes() (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.MaxUploadSize))
	if raw == "" {
		return 0, errors.New("empty size")
	}

	multiplier := int64(1)
	switch raw[len(raw)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		raw = raw[:len(raw)-1]
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", c.MaxUploadSize)
	}
	return n * multiplier, nil
}

func (c *Configuration) ArchiveEnabled() bool {
	return strings.TrimSpace(c.S3.Endpoint) != ""
}
