package constants

import "time"

const (
	// DefaultBaseURL is the API root used when the configuration does not
	// override it.
	DefaultBaseURL = "https://api.github.com"

	// DefaultUserAgent is attached to outgoing requests unless the caller
	// supplies its own User-Agent default.
	DefaultUserAgent = "ghpool"

	// RateLimitEndpoint is the quota-probe path. Calls to it do not count
	// against the core rate limit.
	RateLimitEndpoint = "/rate_limit"

	// RateLimitRemainingHeader carries the remaining quota on every
	// authenticated response.
	RateLimitRemainingHeader = "X-RateLimit-Remaining"

	// ServiceQuotaCeiling is the per-token hourly quota granted by the
	// service. The rotation threshold must stay strictly below it.
	ServiceQuotaCeiling = 5000

	// DefaultRotationThreshold is the remaining-quota level at or below
	// which a token is considered depleted.
	DefaultRotationThreshold = 1000

	// DefaultMaxRetries bounds attempts for one logical request.
	DefaultMaxRetries = 5
)

const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second

	BaseMaxIdleConns        = 100
	BaseMaxIdleConnsPerHost = 10
)
