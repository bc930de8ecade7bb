package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
)

type Config struct {
	App           AppConfig
	Storage       StorageConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == enums.StorageDriverPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Storage.Driver == enums.StorageDriverRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
	}
	if _, err := cfg.Checkout.DeliveryFee(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FARMFRESH_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMFRESH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FARMFRESH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMFRESH_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"FARMFRESH_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// StorageConfig selects the key-value backend that plays the role of the browser's
// durable local storage.
type StorageConfig struct {
	Driver        enums.StorageDriver `envconfig:"FARMFRESH_STORAGE_DRIVER" default:"memory"`
	SQLiteDSN     string              `envconfig:"FARMFRESH_SQLITE_DSN" default:"file:farmfresh.db?cache=shared"`
	PurgeInterval time.Duration       `envconfig:"FARMFRESH_STORAGE_PURGE_INTERVAL" default:"1h"`
}

// UsesSQL reports whether entries live in a SQL table that needs expiry sweeps.
func (s StorageConfig) UsesSQL() bool {
	return s.Driver == enums.StorageDriverPostgres || s.Driver == enums.StorageDriverSQLite
}

func (s StorageConfig) validate() error {
	if !s.Driver.IsValid() {
		return fmt.Errorf("invalid %s %q", EnvStorageDriver, s.Driver)
	}
	return nil
}

type DBConfig struct {
	DSN string `envconfig:"FARMFRESH_DB_DSN"`

	Host     string `envconfig:"FARMFRESH_DB_HOST"`
	Port     int    `envconfig:"FARMFRESH_DB_PORT" default:"5432"`
	User     string `envconfig:"FARMFRESH_DB_USER"`
	Password string `envconfig:"FARMFRESH_DB_PASSWORD"`
	Name     string `envconfig:"FARMFRESH_DB_NAME"`
	SSLMode  string `envconfig:"FARMFRESH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMFRESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMFRESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMFRESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMFRESH_REDIS_URL"`
	Address      string        `envconfig:"FARMFRESH_REDIS_ADDR"`
	Password     string        `envconfig:"FARMFRESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMFRESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMFRESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMFRESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMFRESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMFRESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FARMFRESH_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FARMFRESH_JWT_ISSUER" default:"farmfresh"`
	ExpirationMinutes      int    `envconfig:"FARMFRESH_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"FARMFRESH_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMFRESH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMFRESH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMFRESH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMFRESH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMFRESH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FARMFRESH_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CheckoutConfig struct {
	// DeliveryFeeLKR is charged once per order when the cart subtotal is positive.
	DeliveryFeeLKR    string        `envconfig:"FARMFRESH_CHECKOUT_DELIVERY_FEE" default:"200"`
	DeliveryLeadTime  time.Duration `envconfig:"FARMFRESH_CHECKOUT_DELIVERY_LEAD_TIME" default:"48h"`
	TrackingCodeChars int           `envconfig:"FARMFRESH_CHECKOUT_TRACKING_CODE_CHARS" default:"9"`
}

// DeliveryFee parses the configured flat delivery fee.
func (c CheckoutConfig) DeliveryFee() (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.DeliveryFeeLKR)
	if raw == "" {
		return decimal.Zero, nil
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvCheckoutDeliveryFee, raw, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", EnvCheckoutDeliveryFee)
	}
	return fee, nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FARMFRESH_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
