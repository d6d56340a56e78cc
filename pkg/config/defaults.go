package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentabike"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr       = ""
	DefaultRedisCacheDB    = 0
	DefaultCatalogCacheTTL = 5 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultCORSAllowedOrigins = "*"

	DefaultBookingEventsTopic    = "booking-lifecycle"
	DefaultBookingEventsDLQTopic = "booking-lifecycle-dlq"
	DefaultNotifyTimeout         = 10 * time.Second

	DefaultBusinessTimeZone         = "America/Halifax"
	DefaultPendingHoldDuration      = 3 * time.Hour
	DefaultExpiredPendingBlocks     = true
	DefaultEnforceStatusTransitions = false
	DefaultBookingLockTTL           = 10 * time.Second
	DefaultBookingLockWait          = 3 * time.Second
	DefaultPickupTime               = "09:00"
	DefaultDropoffTime              = "17:00"

	DefaultAdminTokenTTL = 24 * time.Hour

	DefaultSMTPPort = 587
	DefaultSiteURL  = "http://localhost:3000"
)
