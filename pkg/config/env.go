package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisCacheDB    = "REDIS_CACHE_DB"
	EnvCatalogCacheTTL = "CATALOG_CACHE_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvNotifyTimeout         = "NOTIFY_TIMEOUT"

	EnvBusinessTimeZone         = "BUSINESS_TIME_ZONE"
	EnvPendingHoldDuration      = "PENDING_HOLD_DURATION"
	EnvExpiredPendingBlocks     = "EXPIRED_PENDING_BLOCKS"
	EnvEnforceStatusTransitions = "ENFORCE_STATUS_TRANSITIONS"
	EnvBookingLockTTL           = "BOOKING_LOCK_TTL"
	EnvBookingLockWait          = "BOOKING_LOCK_WAIT"

	EnvAdminPasswordHash = "ADMIN_PASSWORD_HASH"
	EnvJWTSecret         = "JWT_SECRET"
	EnvAdminTokenTTL     = "ADMIN_TOKEN_TTL"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvMailFrom     = "MAIL_FROM"
	EnvAdminEmail   = "ADMIN_EMAIL"
	EnvSiteURL      = "SITE_URL"
)
