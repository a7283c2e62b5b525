package properties

import "github.com/kbukum/apikit/version"

// GlobalScope is the prefix of engine-wide property keys.
const GlobalScope = "apikit"

// Property keys understood by the engine.
const (
	KeyProvider              = "provider"
	KeyAPI                   = "api"
	KeyEndpoint              = "endpoint"
	KeyIdentity              = "identity"
	KeyCredential            = "credential"
	KeyAPIVersion            = "api-version"
	KeyBuildVersion          = "build-version"
	KeyISO3166Codes          = "iso3166-codes"
	KeyMaxRetries            = "max-retries"
	KeyMaxRedirects          = "max-redirects"
	KeyRequestTimeout        = "request-timeout"
	KeyRetryDelayStart       = "retries-delay-start"
	KeyMaxRetryDelay         = "max-retry-delay"
	KeyRetryPolicy           = "retry-policy"
	KeyConnectionTimeout     = "connection-timeout"
	KeyMaxConnectionsPerHost = "max-connections-per-host"
	KeyMaxConnectionsTotal   = "max-connections-total"
	KeyIOWorkerThreads       = "io-worker-threads"
	KeyUserThreads           = "user-threads"
	KeyTrustAllCerts         = "trust-all-certs"
	KeyCAFile                = "tls.ca-file"
	KeyCertFile              = "tls.cert-file"
	KeyKeyFile               = "tls.key-file"
	KeyServerName            = "tls.server-name"
	KeyMaxErrorBody          = "max-error-body"
	KeyUserAgent             = "user-agent"
	KeyHedgeAfter            = "hedge.after"
	KeyHedgeUpTo             = "hedge.upto"
	KeyRateLimit             = "rate-limit"
	KeyRateLimitBurst        = "rate-limit.burst"
	KeyBreakerMaxFailures    = "circuit-breaker.max-failures"
	KeyBreakerTimeout        = "circuit-breaker.timeout"
)

// Values of KeyRetryPolicy.
const (
	// RetryPolicyDefault retries connection failures and 500, 502, 503 and 504.
	RetryPolicyDefault = "default"
	// RetryPolicyRetryablehttp follows go-retryablehttp's default policy.
	RetryPolicyRetryablehttp = "retryablehttp"
)

// Defaults returns the built-in default layer.
func Defaults() map[string]string {
	return map[string]string{
		KeyMaxRetries:            "5",
		KeyMaxRedirects:          "5",
		KeyRequestTimeout:        "0",
		KeyRetryDelayStart:       "50",
		KeyMaxRetryDelay:         "5000",
		KeyRetryPolicy:           RetryPolicyDefault,
		KeyConnectionTimeout:     "60000",
		KeyMaxConnectionsPerHost: "0",
		KeyMaxConnectionsTotal:   "50",
		KeyIOWorkerThreads:       "20",
		KeyUserThreads:           "0",
		KeyTrustAllCerts:         "false",
		KeyMaxErrorBody:          "64KB",
		KeyUserAgent:             version.UserAgent(),
		KeyHedgeAfter:            "0",
		KeyHedgeUpTo:             "2",
		KeyRateLimit:             "0",
		KeyRateLimitBurst:        "1",
		KeyBreakerMaxFailures:    "0",
		KeyBreakerTimeout:        "30000",
	}
}
