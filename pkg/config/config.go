package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Predictor    PredictorConfig
	Google       GoogleConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FIRESIGHT_APP_ENV" required:"true"`
	Port         string `envconfig:"FIRESIGHT_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"FIRESIGHT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIRESIGHT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FIRESIGHT_DB_DSN"`

	LegacyHost     string `envconfig:"FIRESIGHT_DB_HOST"`
	LegacyPort     int    `envconfig:"FIRESIGHT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FIRESIGHT_DB_USER"`
	LegacyPassword string `envconfig:"FIRESIGHT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FIRESIGHT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FIRESIGHT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FIRESIGHT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FIRESIGHT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FIRESIGHT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FIRESIGHT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FIRESIGHT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FIRESIGHT_JWT_ISSUER" default:"firesight"`
	ExpirationMinutes int    `envconfig:"FIRESIGHT_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FIRESIGHT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FIRESIGHT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FIRESIGHT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FIRESIGHT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FIRESIGHT_ARGON_KEY_LEN" default:"32"`
}

// PredictorConfig points at the external risk-scoring service. The model
// behind it cold-starts, so the timeout is generous by default.
type PredictorConfig struct {
	URL     string        `envconfig:"FIRESIGHT_PREDICTOR_URL" required:"true"`
	ModelID string        `envconfig:"FIRESIGHT_PREDICTOR_MODEL_ID" default:"MobileNetV2-v2"`
	Timeout time.Duration `envconfig:"FIRESIGHT_PREDICTOR_TIMEOUT" default:"30s"`
}

type GoogleConfig struct {
	ClientID string `envconfig:"FIRESIGHT_GOOGLE_CLIENT_ID"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FIRESIGHT_AUTO_MIGRATE" default:"false"`
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
