package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SCHOLARLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SCHOLARLY_DB_DSN"
	EnvDBHost = "SCHOLARLY_DB_HOST"
	EnvDBUser = "SCHOLARLY_DB_USER"
	EnvDBName = "SCHOLARLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Identity      IdentityConfig
	Setup         SetupConfig
	Mailer        MailerConfig
	Subscription  SubscriptionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCHOLARLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHOLARLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCHOLARLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHOLARLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCHOLARLY_DB_DSN"`
	Driver string `envconfig:"SCHOLARLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHOLARLY_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHOLARLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHOLARLY_DB_USER"`
	LegacyPassword string `envconfig:"SCHOLARLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHOLARLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHOLARLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHOLARLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHOLARLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHOLARLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHOLARLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHOLARLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCHOLARLY_REDIS_ADDR"`
	Password     string        `envconfig:"SCHOLARLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHOLARLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHOLARLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHOLARLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHOLARLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHOLARLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHOLARLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SCHOLARLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SCHOLARLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SCHOLARLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SCHOLARLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCHOLARLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCHOLARLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCHOLARLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCHOLARLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCHOLARLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow       time.Duration `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit   int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit      int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
	ResendWindow       time.Duration `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_RESEND_WINDOW" default:"5m"`
	ResendEmailLimit   int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_RESEND_EMAIL_LIMIT" default:"5"`
	ResendIPLimit      int           `envconfig:"SCHOLARLY_AUTH_RATE_LIMIT_RESEND_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SCHOLARLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SCHOLARLY_AUTO_MIGRATE" default:"false"`
}

type IdentityConfig struct {
	VerificationTokenTTL  time.Duration `envconfig:"SCHOLARLY_IDENTITY_VERIFICATION_TOKEN_TTL" default:"24h"`
	PasswordResetTokenTTL time.Duration `envconfig:"SCHOLARLY_IDENTITY_RESET_TOKEN_TTL" default:"1h"`
}

type SetupConfig struct {
	// Code is the out-of-band shared secret gating the one-time super admin
	// bootstrap. Empty disables the endpoint entirely.
	Code string `envconfig:"SCHOLARLY_SETUP_CODE"`
}

type MailerConfig struct {
	FromAddress string `envconfig:"SCHOLARLY_MAILER_FROM" default:"no-reply@scholarly.app"`
	BaseURL     string `envconfig:"SCHOLARLY_MAILER_BASE_URL" default:"http://localhost:3000"`
}

type SubscriptionConfig struct {
	// FallbackFeatures is the minimal feature set visible after a trial
	// lapses without payment confirmation.
	FallbackFeatures []string `envconfig:"SCHOLARLY_SUBSCRIPTION_FALLBACK_FEATURES" default:"profile,scholarship_search"`
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
