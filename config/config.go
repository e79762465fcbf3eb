package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT" default:"8080"`
		Host     string `envconfig:"HOST"`
		// RequestTimeoutSeconds bounds every request; 0 disables the limit.
		RequestTimeoutSeconds int `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"30"`
		Shutdown              struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS" default:"10"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME" default:"traveltrust"`
		Timezone string `envconfig:"TIMEZONE" default:"UTC"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS" default:"120"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
			TrustProxy    bool `envconfig:"TRUST_PROXY"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"60"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN" default:"15"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int              `envconfig:"MAX_RETRY" default:"5"`
			RetryWaitTime  int              `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string           `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
			AutoMigrate    bool             `envconfig:"AUTO_MIGRATE"`
			Prefix         string           `envconfig:"PREFIX"`
			Read           PostgresEndpoint `envconfig:"READ"`
			Write          PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		Topic         string   `envconfig:"TOPIC" default:"traveltrust.events"`
		Enable        bool     `envconfig:"ENABLE"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	Trust struct {
		OwnerAddress      string `envconfig:"OWNER_ADDRESS"`
		ArbitratorAddress string `envconfig:"ARBITRATOR_ADDRESS"`
		IdempotencyTTLMin int    `envconfig:"IDEMPOTENCY_TTL_MIN" default:"1440"`
		// SharedStorage is set when several processes write the same ledger
		// tables, e.g. serverless instances.
		SharedStorage         bool `envconfig:"SHARED_STORAGE"`
		PersistTimeoutSeconds int  `envconfig:"PERSIST_TIMEOUT_SECONDS" default:"5"`
		EmitTimeoutSeconds    int  `envconfig:"EMIT_TIMEOUT_SECONDS" default:"10"`
	} `envconfig:"TRUST"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	}
}

// PostgresEndpoint is one side of the read/write split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT" default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
	initErr     error
)

var errInvalidSetting = errors.New("invalid setting")

// Init loads .env when present and then the process environment. It runs
// once; later calls return the first result.
func Init() error {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Debug().Err(err).Msg("No .env file loaded, using process environment")
		}

		if err := envconfig.Process("", &conf); err != nil {
			initErr = fmt.Errorf("failed to process environment variables: %w", err)

			return
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	return initErr
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}

// Validate checks the settings the trust layer cannot start without. Tests
// build partial configs, so this runs at the entrypoints only.
func (c *Config) Validate() error {
	var errs []error

	if !common.IsHexAddress(c.Trust.OwnerAddress) {
		errs = append(errs, fmt.Errorf("%w: TRUST_OWNER_ADDRESS %q", errInvalidSetting, c.Trust.OwnerAddress))
	}

	if c.Trust.ArbitratorAddress != "" && !common.IsHexAddress(c.Trust.ArbitratorAddress) {
		errs = append(errs, fmt.Errorf("%w: TRUST_ARBITRATOR_ADDRESS %q", errInvalidSetting, c.Trust.ArbitratorAddress))
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, fmt.Errorf("%w: JWT secrets are required", errInvalidSetting))
	}

	if c.App.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: APP_API_KEY is required", errInvalidSetting))
	}

	return errors.Join(errs...)
}
