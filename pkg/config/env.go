package config

// EnvPrefix namespaces every environment variable the platform reads.
const EnvPrefix = "BAZARIO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical env var names, kept in one place so tests and docs agree.
const (
	EnvAppEnv   = "BAZARIO_APP_ENV"
	EnvPort     = "BAZARIO_APP_PORT"
	EnvDBDSN    = "BAZARIO_DB_DSN"
	EnvDBHost   = "BAZARIO_DB_HOST"
	EnvDBUser   = "BAZARIO_DB_USER"
	EnvDBName   = "BAZARIO_DB_NAME"
	EnvRedisURL = "BAZARIO_REDIS_URL"

	EnvJWTSecret  = "BAZARIO_JWT_SECRET"
	EnvJWTIssuer  = "BAZARIO_JWT_ISSUER"
	EnvJWTExpMins = "BAZARIO_JWT_EXPIRATION_MINUTES"

	EnvPlatformAccountID   = "BAZARIO_PLATFORM_ACCOUNT_ID"
	EnvCommissionPercent   = "BAZARIO_COMMISSION_PERCENT"
	EnvDeliveryChargeCents = "BAZARIO_DELIVERY_CHARGE_CENTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
