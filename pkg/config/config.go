package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FOODGO_DB_DSN"
	EnvDBHost = "FOODGO_DB_HOST"
	EnvDBUser = "FOODGO_DB_USER"
	EnvDBName = "FOODGO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	OTP           OTPConfig
	Mail          MailConfig
	Checkout      CheckoutConfig
	Feed          FeedConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"FOODGO_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODGO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODGO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOODGO_DB_DSN"`
	Driver string `envconfig:"FOODGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOODGO_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODGO_DB_USER"`
	LegacyPassword string `envconfig:"FOODGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODGO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODGO_REDIS_ADDR"`
	Password     string        `envconfig:"FOODGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FOODGO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FOODGO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FOODGO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FOODGO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODGO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODGO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FOODGO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODGO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODGO_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"FOODGO_PASSWORD_MIN_LENGTH" default:"8"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FOODGO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FOODGO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	OTPWindow          time.Duration `envconfig:"FOODGO_AUTH_RATE_LIMIT_OTP_WINDOW" default:"5m"`
	OTPEmailLimit      int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"3"`
	OTPIPLimit         int           `envconfig:"FOODGO_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"10"`
}

type OTPConfig struct {
	ValidityMinutes int `envconfig:"FOODGO_OTP_VALIDITY_MINUTES" default:"10"`
	MaxAttempts     int `envconfig:"FOODGO_OTP_MAX_ATTEMPTS" default:"5"`
}

// Validity returns the OTP lifetime configured in minutes.
func (o OTPConfig) Validity() time.Duration {
	if o.ValidityMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(o.ValidityMinutes) * time.Minute
}

type MailConfig struct {
	Mode        string        `envconfig:"FOODGO_EMAIL_MODE" default:"smtp"`
	From        string        `envconfig:"FOODGO_EMAIL_FROM" default:"FoodGo <no-reply@foodgo.app>"`
	SMTPHost    string        `envconfig:"FOODGO_SMTP_HOST"`
	SMTPPort    int           `envconfig:"FOODGO_SMTP_PORT" default:"587"`
	SMTPUser    string        `envconfig:"FOODGO_SMTP_USER"`
	SMTPPass    string        `envconfig:"FOODGO_SMTP_PASSWORD"`
	BrevoAPIKey string        `envconfig:"FOODGO_BREVO_API_KEY"`
	BrevoURL    string        `envconfig:"FOODGO_BREVO_API_URL" default:"https://api.brevo.com/v3/smtp/email"`
	SendTimeout time.Duration `envconfig:"FOODGO_EMAIL_SEND_TIMEOUT" default:"12s"`
}

type CheckoutConfig struct {
	DefaultPaymentMethod string `envconfig:"FOODGO_CHECKOUT_DEFAULT_PAYMENT_METHOD" default:"card"`
}

type FeedConfig struct {
	MaxRadiusKm    float64 `envconfig:"FOODGO_FEED_MAX_RADIUS_KM" default:"10"`
	MaxRestaurants int     `envconfig:"FOODGO_FEED_MAX_RESTAURANTS" default:"40"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODGO_AUTO_MIGRATE" default:"false"`
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
