package config

const EnvPrefix = "MOBIHUB"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "MOBIHUB_APP_ENV"
	EnvPort       = "MOBIHUB_APP_PORT"
	EnvDBDSN      = "MOBIHUB_DB_DSN"
	EnvDBHost     = "MOBIHUB_DB_HOST"
	EnvDBUser     = "MOBIHUB_DB_USER"
	EnvDBName     = "MOBIHUB_DB_NAME"
	EnvRedisURL   = "MOBIHUB_REDIS_URL"
	EnvJWTSecret  = "MOBIHUB_JWT_SECRET"
	EnvJWTIssuer  = "MOBIHUB_JWT_ISSUER"
	EnvJWTExpMins = "MOBIHUB_JWT_EXPIRATION_MINUTES"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
