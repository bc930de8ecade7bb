package config

// EnvPrefix namespaces generated keys; every field also carries an explicit tag that
// envconfig falls back to.
const EnvPrefix = "FARMFRESH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "FARMFRESH_APP_ENV"
	EnvPort                = "FARMFRESH_APP_PORT"
	EnvStorageDriver       = "FARMFRESH_STORAGE_DRIVER"
	EnvDBDSN               = "FARMFRESH_DB_DSN"
	EnvDBHost              = "FARMFRESH_DB_HOST"
	EnvDBUser              = "FARMFRESH_DB_USER"
	EnvDBName              = "FARMFRESH_DB_NAME"
	EnvRedisURL            = "FARMFRESH_REDIS_URL"
	EnvRedisAddr           = "FARMFRESH_REDIS_ADDR"
	EnvJWTSecret           = "FARMFRESH_JWT_SECRET"
	EnvCheckoutDeliveryFee = "FARMFRESH_CHECKOUT_DELIVERY_FEE"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
