package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Leave         LeaveConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if cfg.PubSub.NotificationTopic != "" && cfg.GCP.ProjectID == "" {
		return nil, fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubNotificationTopic)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"HOSTELHUB_APP_ENV" required:"true"`
	Port         string   `envconfig:"HOSTELHUB_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"HOSTELHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"HOSTELHUB_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"HOSTELHUB_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HOSTELHUB_DB_DSN"`
	Driver string `envconfig:"HOSTELHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOSTELHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"HOSTELHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOSTELHUB_DB_USER"`
	LegacyPassword string `envconfig:"HOSTELHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOSTELHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOSTELHUB_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"HOSTELHUB_SQLITE_PATH" default:"hostelhub.db"`

	MaxOpenConns    int           `envconfig:"HOSTELHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOSTELHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOSTELHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOSTELHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOSTELHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOSTELHUB_REDIS_ADDR"`
	Password     string        `envconfig:"HOSTELHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOSTELHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOSTELHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOSTELHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOSTELHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOSTELHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOSTELHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HOSTELHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HOSTELHUB_JWT_ISSUER" default:"hostelhub"`
	ExpirationMinutes      int    `envconfig:"HOSTELHUB_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"HOSTELHUB_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HOSTELHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HOSTELHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HOSTELHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HOSTELHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HOSTELHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"HOSTELHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"HOSTELHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"HOSTELHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	// SubmitLimit caps leave submissions per authenticated user per SubmitWindow.
	SubmitWindow time.Duration `envconfig:"HOSTELHUB_RATE_LIMIT_LEAVE_SUBMIT_WINDOW" default:"1h"`
	SubmitLimit  int           `envconfig:"HOSTELHUB_RATE_LIMIT_LEAVE_SUBMIT_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HOSTELHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HOSTELHUB_AUTO_MIGRATE" default:"false"`
}

// LeaveConfig tunes the leave request engine.
type LeaveConfig struct {
	NotificationTimeout time.Duration `envconfig:"HOSTELHUB_LEAVE_NOTIFICATION_TIMEOUT" default:"5s"`
	ExpiryBatchSize     int           `envconfig:"HOSTELHUB_LEAVE_EXPIRY_BATCH_SIZE" default:"200"`
}

type NotificationsConfig struct {
	Retention        time.Duration `envconfig:"HOSTELHUB_NOTIFICATIONS_RETENTION" default:"720h"`
	CleanupBatchSize int           `envconfig:"HOSTELHUB_NOTIFICATIONS_CLEANUP_BATCH_SIZE" default:"1000"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"HOSTELHUB_CRON_INTERVAL" default:"1h"`
	LockTTL    time.Duration `envconfig:"HOSTELHUB_CRON_LOCK_TTL" default:"10m"`
	JobTimeout time.Duration `envconfig:"HOSTELHUB_CRON_JOB_TIMEOUT" default:"5m"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"HOSTELHUB_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"HOSTELHUB_GCP_CREDENTIALS_JSON"`
}

// PubSubConfig is optional; an empty topic disables outbound notification fan-out.
type PubSubConfig struct {
	NotificationTopic string `envconfig:"HOSTELHUB_PUBSUB_NOTIFICATION_TOPIC"`
	// CreateTopic creates a missing topic at startup (emulator and dev).
	CreateTopic    bool `envconfig:"HOSTELHUB_PUBSUB_CREATE_TOPIC" default:"false"`
	OrderByStudent bool `envconfig:"HOSTELHUB_PUBSUB_ORDER_BY_STUDENT" default:"true"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
