package config

const (
	EnvPrefix = "HOSTELHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                  = "HOSTELHUB_APP_ENV"
	EnvPort                    = "HOSTELHUB_APP_PORT"
	EnvDBDSN                   = "HOSTELHUB_DB_DSN"
	EnvDBHost                  = "HOSTELHUB_DB_HOST"
	EnvDBUser                  = "HOSTELHUB_DB_USER"
	EnvDBPassword              = "HOSTELHUB_DB_PASSWORD"
	EnvDBName                  = "HOSTELHUB_DB_NAME"
	EnvUseSQLite               = "HOSTELHUB_USE_SQLITE"
	EnvRedisURL                = "HOSTELHUB_REDIS_URL"
	EnvJWTSecret               = "HOSTELHUB_JWT_SECRET"
	EnvJWTIssuer               = "HOSTELHUB_JWT_ISSUER"
	EnvJWTExpMins              = "HOSTELHUB_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID            = "HOSTELHUB_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "HOSTELHUB_PUBSUB_NOTIFICATION_TOPIC"
	EnvLeaveNotifyTimeout      = "HOSTELHUB_LEAVE_NOTIFICATION_TIMEOUT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
