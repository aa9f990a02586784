package config

// EnvPrefix namespaces every environment variable the seeder reads.
const EnvPrefix = "EDQM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv         = "EDQM_APP_ENV"
	EnvNumCustomers   = "EDQM_NUM_CUSTOMERS"
	EnvNumProducts    = "EDQM_NUM_PRODUCTS"
	EnvOrdersMin      = "EDQM_ORDERS_MIN"
	EnvOrdersMax      = "EDQM_ORDERS_MAX"
	EnvGeneratorSeed  = "EDQM_GENERATOR_SEED"
	EnvChaosErrorRate = "EDQM_CHAOS_ERROR_RATE"
	EnvBackfillDays   = "EDQM_BACKFILL_DAYS"
	EnvDataDir        = "EDQM_DATA_DIR"
	EnvGCSBucketName  = "EDQM_GCS_BUCKET_NAME"
)
