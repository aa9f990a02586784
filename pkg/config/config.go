package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Generator GeneratorConfig
	Chaos     ChaosConfig
	Backfill  BackfillConfig
	GCS       GCSConfig
	Snowflake SnowflakeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if cfg.Generator.OrdersMin > cfg.Generator.OrdersMax {
		return nil, fmt.Errorf("orders band inverted: min %d > max %d",
			cfg.Generator.OrdersMin, cfg.Generator.OrdersMax)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EDQM_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"EDQM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EDQM_LOG_WARN_STACK" default:"false"`
}

type GeneratorConfig struct {
	NumCustomers int `envconfig:"EDQM_NUM_CUSTOMERS" default:"2000" validate:"gt=0"`
	NumProducts  int `envconfig:"EDQM_NUM_PRODUCTS" default:"200" validate:"gt=0"`
	OrdersMin    int `envconfig:"EDQM_ORDERS_MIN" default:"50" validate:"gt=0"`
	OrdersMax    int `envconfig:"EDQM_ORDERS_MAX" default:"150" validate:"gt=0"`

	// Seed makes a run reproducible. Zero derives the seed from the clock.
	Seed int64 `envconfig:"EDQM_GENERATOR_SEED" default:"0"`
}

type ChaosConfig struct {
	ErrorRate float64 `envconfig:"EDQM_CHAOS_ERROR_RATE" default:"0.10" validate:"gte=0,lte=1"`
}

type BackfillConfig struct {
	Days    int    `envconfig:"EDQM_BACKFILL_DAYS" default:"365" validate:"gt=0"`
	DataDir string `envconfig:"EDQM_DATA_DIR" default:"data"`

	// EndDate (YYYY-MM-DD) pins the last day of the window; empty means today.
	EndDate string `envconfig:"EDQM_BACKFILL_END_DATE"`
}

type GCSConfig struct {
	// BucketName empty disables the landing sink: the run degrades to
	// local-file-only output with a warning.
	BucketName             string `envconfig:"EDQM_GCS_BUCKET_NAME"`
	LandingPrefix          string `envconfig:"EDQM_GCS_LANDING_PREFIX" default:"landing"`
	CredentialsJSON        string `envconfig:"EDQM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EDQM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type SnowflakeConfig struct {
	Account   string `envconfig:"EDQM_SNOWFLAKE_ACCOUNT"`
	User      string `envconfig:"EDQM_SNOWFLAKE_USER"`
	Password  string `envconfig:"EDQM_SNOWFLAKE_PASSWORD"`
	Role      string `envconfig:"EDQM_SNOWFLAKE_ROLE"`
	Warehouse string `envconfig:"EDQM_SNOWFLAKE_WAREHOUSE"`
	Database  string `envconfig:"EDQM_SNOWFLAKE_DATABASE"`
	Schema    string `envconfig:"EDQM_SNOWFLAKE_SCHEMA" default:"RAW_MARTS"`
}

// Configured reports whether enough of the warehouse connection is present
// for the snapshot binary to run.
func (s SnowflakeConfig) Configured() bool {
	return s.Account != "" && s.User != "" && s.Database != ""
}
