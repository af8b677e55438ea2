package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Business     BusinessConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Business.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZARIO_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZARIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZARIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZARIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BAZARIO_DB_DSN"`
	Driver string `envconfig:"BAZARIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BAZARIO_DB_HOST"`
	LegacyPort     int    `envconfig:"BAZARIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BAZARIO_DB_USER"`
	LegacyPassword string `envconfig:"BAZARIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BAZARIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BAZARIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAZARIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAZARIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAZARIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAZARIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZARIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BAZARIO_REDIS_ADDR"`
	Password     string        `envconfig:"BAZARIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZARIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZARIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZARIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZARIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZARIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZARIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BAZARIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAZARIO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BAZARIO_JWT_EXPIRATION_MINUTES" required:"true"`
}

// BusinessConfig carries the settlement parameters read at settlement time:
// the platform's commission rate, the flat delivery charge, and the
// well-known platform wallet holder. The platform holder is configured
// explicitly rather than discovered by an unfiltered query.
type BusinessConfig struct {
	PlatformAccountID   string `envconfig:"BAZARIO_PLATFORM_ACCOUNT_ID" required:"true"`
	CommissionPercent   string `envconfig:"BAZARIO_COMMISSION_PERCENT" default:"10"`
	DeliveryChargeCents int64  `envconfig:"BAZARIO_DELIVERY_CHARGE_CENTS" default:"5000"`

	platformID uuid.UUID
	commission decimal.Decimal
}

func (b *BusinessConfig) validate() error {
	id, err := uuid.Parse(strings.TrimSpace(b.PlatformAccountID))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvPlatformAccountID, err)
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(b.CommissionPercent))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvCommissionPercent, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be within [0,100]", EnvCommissionPercent)
	}
	if b.DeliveryChargeCents < 0 {
		return fmt.Errorf("%s must be non-negative", EnvDeliveryChargeCents)
	}
	b.platformID = id
	b.commission = pct
	return nil
}

// NewBusinessConfig builds a BusinessConfig directly from parsed values,
// bypassing the environment. Tests and tools use this.
func NewBusinessConfig(platformID uuid.UUID, commissionPct decimal.Decimal, deliveryChargeCents int64) BusinessConfig {
	return BusinessConfig{
		PlatformAccountID:   platformID.String(),
		CommissionPercent:   commissionPct.String(),
		DeliveryChargeCents: deliveryChargeCents,
		platformID:          platformID,
		commission:          commissionPct,
	}
}

// PlatformHolderID returns the configured platform wallet holder id.
func (b BusinessConfig) PlatformHolderID() uuid.UUID {
	return b.platformID
}

// Commission returns the seller commission percentage as a decimal.
func (b BusinessConfig) Commission() decimal.Decimal {
	return b.commission
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BAZARIO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
