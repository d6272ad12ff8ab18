package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "firesight"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN      = "FIRESIGHT_DB_DSN"
	EnvDBHost     = "FIRESIGHT_DB_HOST"
	EnvDBUser     = "FIRESIGHT_DB_USER"
	EnvDBName     = "FIRESIGHT_DB_NAME"
	EnvDBPassword = "FIRESIGHT_DB_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
