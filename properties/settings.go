package properties

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/util"
)

const defaultMaxErrorBody = 64 * 1024

// Settings is the typed view of a resolved Bag. It is derived once per context.
type Settings struct {
	Provider     string   `validate:"required"`
	API          string   `validate:"required"`
	Endpoint     string   `validate:"required,url"`
	Identity     string   `json:"-"`
	Credential   string   `json:"-"`
	APIVersion   string
	BuildVersion string
	ISO3166Codes []string

	MaxRetries      int           `validate:"gte=0"`
	MaxRedirects    int           `validate:"gte=0"`
	RequestTimeout  time.Duration `validate:"gte=0"`
	RetryDelayStart time.Duration `validate:"gte=0"`
	MaxRetryDelay   time.Duration `validate:"gtefield=RetryDelayStart"`
	RetryPolicy     string        `validate:"omitempty,oneof=default retryablehttp"`

	ConnectionTimeout     time.Duration `validate:"gte=0"`
	MaxConnectionsPerHost int           `validate:"gte=0"`
	MaxConnectionsTotal   int           `validate:"gte=0"`
	IOWorkerThreads       int           `validate:"gte=0"`
	UserThreads           int           `validate:"gte=0"`
	TrustAllCerts         bool
	CAFile                string
	CertFile              string `validate:"required_with=KeyFile"`
	KeyFile               string `validate:"required_with=CertFile"`
	ServerName            string
	MaxErrorBody          int64 `validate:"gt=0"`
	UserAgent             string

	HedgeAfter         time.Duration `validate:"gte=0"`
	HedgeUpTo          int           `validate:"gte=1"`
	RateLimit          float64       `validate:"gte=0"`
	RateLimitBurst     int           `validate:"gte=1"`
	BreakerMaxFailures int           `validate:"gte=0"`
	BreakerTimeout     time.Duration `validate:"gte=0"`
}

// Requirements controls which credentials must be present.
type Requirements struct {
	// Identity must resolve to a non-empty value.
	Identity bool
	// Credential must resolve to a non-empty value.
	Credential bool
}

var validate = validator.New()

// Settings derives the typed settings from the bag. Endpoint, provider and api
// are always required; identity and credential as requested. A required key
// resolving to an empty string is treated as missing.
func (b Bag) Settings(req Requirements) (Settings, error) {
	p := parser{bag: b}
	s := Settings{
		Provider:     p.str(KeyProvider),
		API:          p.str(KeyAPI),
		Endpoint:     p.required(KeyEndpoint, true),
		Identity:     p.required(KeyIdentity, req.Identity),
		Credential:   p.required(KeyCredential, req.Credential),
		APIVersion:   p.str(KeyAPIVersion),
		BuildVersion: p.str(KeyBuildVersion),
		ISO3166Codes: splitList(p.str(KeyISO3166Codes)),

		MaxRetries:      p.integer(KeyMaxRetries),
		MaxRedirects:    p.integer(KeyMaxRedirects),
		RequestTimeout:  p.millis(KeyRequestTimeout),
		RetryDelayStart: p.millis(KeyRetryDelayStart),
		MaxRetryDelay:   p.millis(KeyMaxRetryDelay),
		RetryPolicy:     strings.ToLower(p.str(KeyRetryPolicy)),

		ConnectionTimeout:     p.millis(KeyConnectionTimeout),
		MaxConnectionsPerHost: p.integer(KeyMaxConnectionsPerHost),
		MaxConnectionsTotal:   p.integer(KeyMaxConnectionsTotal),
		IOWorkerThreads:       p.integer(KeyIOWorkerThreads),
		UserThreads:           p.integer(KeyUserThreads),
		TrustAllCerts:         p.boolean(KeyTrustAllCerts),
		CAFile:                p.str(KeyCAFile),
		CertFile:              p.str(KeyCertFile),
		KeyFile:               p.str(KeyKeyFile),
		ServerName:            p.str(KeyServerName),
		MaxErrorBody:          p.size(KeyMaxErrorBody, defaultMaxErrorBody),
		UserAgent:             p.str(KeyUserAgent),

		HedgeAfter:         p.millis(KeyHedgeAfter),
		HedgeUpTo:          p.integerOr(KeyHedgeUpTo, 2),
		RateLimit:          p.float(KeyRateLimit),
		RateLimitBurst:     p.integerOr(KeyRateLimitBurst, 1),
		BreakerMaxFailures: p.integer(KeyBreakerMaxFailures),
		BreakerTimeout:     p.millis(KeyBreakerTimeout),
	}
	if p.err != nil {
		return Settings{}, p.err
	}
	if err := validate.Struct(s); err != nil {
		return Settings{}, validationError(err)
	}
	return s, nil
}

// parser accumulates the first conversion error so Settings reads linearly.
type parser struct {
	bag Bag
	err error
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.bag.GetOr(key, ""))
}

func (p *parser) required(key string, required bool) string {
	v := p.str(key)
	if required && v == "" && p.err == nil {
		scope := p.str(KeyProvider)
		if scope == "" {
			scope = GlobalScope
		}
		p.err = apperrors.MissingProperty(key, scope)
	}
	return v
}

func (p *parser) integer(key string) int { return p.integerOr(key, 0) }

func (p *parser) integerOr(key string, def int) int {
	raw := p.str(key)
	if raw == "" {
		return def
	}
	v, err := cast.ToIntE(raw)
	p.fail(key, raw, err)
	return v
}

func (p *parser) float(key string) float64 {
	raw := p.str(key)
	if raw == "" {
		return 0
	}
	v, err := cast.ToFloat64E(raw)
	p.fail(key, raw, err)
	return v
}

func (p *parser) millis(key string) time.Duration {
	raw := p.str(key)
	if raw == "" {
		return 0
	}
	v, err := cast.ToInt64E(raw)
	p.fail(key, raw, err)
	return time.Duration(v) * time.Millisecond
}

func (p *parser) size(key string, def int64) int64 {
	raw := p.str(key)
	if raw == "" {
		return def
	}
	v, err := util.ParseSize(raw)
	p.fail(key, raw, err)
	return v
}

func (p *parser) boolean(key string) bool {
	raw := p.str(key)
	if raw == "" {
		return false
	}
	v, err := cast.ToBoolE(raw)
	p.fail(key, raw, err)
	return v
}

func (p *parser) fail(key, raw string, err error) {
	if err != nil && p.err == nil {
		p.err = apperrors.Configuration("property %s has invalid value %q", key, raw).WithCause(err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return apperrors.Configuration("invalid settings").WithCause(err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperrors.Configuration("invalid settings: %s", strings.Join(fields, ", ")).WithCause(err)
}
