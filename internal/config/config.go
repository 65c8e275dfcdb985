package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Sequence   SequenceConfig   `mapstructure:"sequence" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	S3         S3Config         `mapstructure:"s3"`
	Email      EmailConfig      `mapstructure:"email"`
	PDF        PDFConfig        `mapstructure:"pdf"`
	Invoice    InvoiceConfig    `mapstructure:"invoice" validate:"required"`
	Receipt    ReceiptConfig    `mapstructure:"receipt" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`

	// AllowedOrigins lists browser origins allowed to call the API. Empty or
	// "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

// StoreConfig selects the backend holding business records
type StoreConfig struct {
	Backend types.StoreBackend `mapstructure:"backend" validate:"required,oneof=postgres mongo"`
}

// SequenceConfig selects the backend holding named counters
type SequenceConfig struct {
	Backend types.SequenceBackend `mapstructure:"backend" validate:"required,oneof=store dynamodb"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type StorageConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}

type PDFConfig struct {
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	ChromePath    string        `mapstructure:"chrome_path"`
	NoSandbox     bool          `mapstructure:"no_sandbox"`
	AssetDirs     []string      `mapstructure:"asset_dirs"`
}

type InvoiceConfig struct {
	MaxAttempts   int    `mapstructure:"max_attempts" validate:"required,min=1,max=10"`
	DefaultPrefix string `mapstructure:"default_prefix" validate:"required"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type ReceiptConfig struct {
	Prefix      string `mapstructure:"prefix" validate:"required"`
	MaxAttempts int    `mapstructure:"max_attempts" validate:"required,min=1,max=10"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func NewConfig() (*Configuration, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/agencyops")

	v.SetEnvPrefix("AGENCYOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it even when
// config.yaml does not mention it
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("sequence.backend", d.Sequence.Backend)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "agencyops")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "agencyops")
	v.SetDefault("dynamodb.in_use", false)
	v.SetDefault("dynamodb.region", "")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("dynamodb.counter_table_name", "agencyops_counters")
	v.SetDefault("storage.root_dir", d.Storage.RootDir)
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key_prefix", "")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.reply_to", "")
	v.SetDefault("email.default_recipient", "")
	v.SetDefault("pdf.render_timeout", d.PDF.RenderTimeout)
	v.SetDefault("pdf.chrome_path", "")
	v.SetDefault("pdf.no_sandbox", true)
	v.SetDefault("pdf.asset_dirs", d.PDF.AssetDirs)
	v.SetDefault("invoice.max_attempts", d.Invoice.MaxAttempts)
	v.SetDefault("invoice.default_prefix", d.Invoice.DefaultPrefix)
	v.SetDefault("invoice.public_base_url", "")
	v.SetDefault("receipt.prefix", d.Receipt.Prefix)
	v.SetDefault("receipt.max_attempts", d.Receipt.MaxAttempts)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Store.Backend {
	case types.StoreBackendPostgres:
		if c.Postgres.Host == "" || c.Postgres.DBName == "" {
			return ierr.NewError("postgres host and dbname are required").
				WithHint("Set postgres.host and postgres.dbname when store.backend is postgres").
				Mark(ierr.ErrValidation)
		}
	case types.StoreBackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return ierr.NewError("mongo uri and database are required").
				WithHint("Set mongo.uri and mongo.database when store.backend is mongo").
				Mark(ierr.ErrValidation)
		}
	}

	if c.Sequence.Backend == types.SequenceBackendDynamoDB && c.DynamoDB.CounterTableName == "" {
		return ierr.NewError("dynamodb counter table is required").
			WithHint("Set dynamodb.counter_table_name when sequence.backend is dynamodb").
			Mark(ierr.ErrValidation)
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		return ierr.NewError("s3 bucket is required").
			WithHint("Set s3.bucket when s3.enabled is true").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Store:      StoreConfig{Backend: types.StoreBackendPostgres},
		Sequence:   SequenceConfig{Backend: types.SequenceBackendStore},
		Storage:    StorageConfig{RootDir: "./data"},
		PDF: PDFConfig{
			RenderTimeout: 30 * time.Second,
			NoSandbox:     true,
			AssetDirs:     []string{".", "public", "assets", "uploads"},
		},
		Invoice: InvoiceConfig{MaxAttempts: 3, DefaultPrefix: "PAN"},
		Receipt: ReceiptConfig{Prefix: "RUD", MaxAttempts: 3},
		Cache:   CacheConfig{Enabled: true, TTL: 5 * time.Minute},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
