package properties

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/apikit/errors"
)

func TestResolve_OverrideEndpointWins(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		Provider:   map[string]string{KeyEndpoint: "https://default"},
		Overrides:  map[string]string{KeyEndpoint: "https://x"},
	})

	v, ok := bag.Get(KeyEndpoint)
	require.True(t, ok)
	assert.Equal(t, "https://x", v)
}

func TestResolve_LayerOrder(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		Builtin:    map[string]string{"a": "builtin", "b": "builtin", "c": "builtin", "d": "builtin", "e": "builtin"},
		API:        map[string]string{"b": "api", "c": "api", "d": "api", "e": "api"},
		Provider:   map[string]string{"c": "provider", "d": "provider", "e": "provider"},
		Overrides:  map[string]string{"d": "override", "e": "override"},
		System:     map[string]string{"apikit.e": "system"},
	})

	assert.Equal(t, "builtin", bag.GetOr("a", ""))
	assert.Equal(t, "api", bag.GetOr("b", ""))
	assert.Equal(t, "provider", bag.GetOr("c", ""))
	assert.Equal(t, "override", bag.GetOr("d", ""))
	assert.Equal(t, "system", bag.GetOr("e", ""))
}

func TestResolve_ScopedKeyWinsWithinLayer(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		Overrides: map[string]string{
			"max-retries":          "1",
			"apikit.max-retries":   "2",
			"acme-api.max-retries": "3",
			"acme.max-retries":     "4",
		},
	})
	assert.Equal(t, "4", bag.GetOr(KeyMaxRetries, ""))
	_, scopedKept := bag.Get("acme.max-retries")
	assert.False(t, scopedKept, "scoped keys are folded into the bare key")
}

func TestResolve_HigherLayerBeatsLowerScopedKey(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		Provider:   map[string]string{"acme.endpoint": "https://scoped-default"},
		Overrides:  map[string]string{"endpoint": "https://override"},
	})
	assert.Equal(t, "https://override", bag.GetOr(KeyEndpoint, ""))
}

func TestResolve_SystemFilteredByScope(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		System: map[string]string{
			"acme.identity":     "bob",
			"other.identity":    "mallory",
			"endpoint":          "https://unscoped",
			"apikit.user-agent": "tests",
		},
	})
	assert.Equal(t, "bob", bag.GetOr(KeyIdentity, ""))
	assert.Equal(t, "tests", bag.GetOr(KeyUserAgent, ""))
	_, ok := bag.Get(KeyEndpoint)
	assert.False(t, ok, "unscoped system keys must be ignored")
	_, ok = bag.Get("other.identity")
	assert.False(t, ok, "keys of other providers must be ignored")
}

func TestResolve_Idempotent(t *testing.T) {
	src := Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		Builtin:    Defaults(),
		API:        map[string]string{"acme-api.endpoint": "https://a", "apikit.endpoint": "https://b"},
		Provider:   map[string]string{"x": "1", "y": "2", "acme.x": "3"},
		Overrides:  map[string]string{"z": "${x}"},
	}
	for range 20 {
		assert.True(t, Resolve(src).Equal(Resolve(src)))
		assert.Equal(t, Resolve(src).String(), Resolve(src).String())
	}
}

func TestLookup_Order(t *testing.T) {
	props := map[string]string{
		"acme.endpoint":   "https://scoped",
		"apikit.endpoint": "https://global",
		"api-version":     "v2",
	}

	v, err := Lookup(props, "acme", KeyEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "https://scoped", v)

	v, err = Lookup(props, "other", KeyEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "https://global", v)

	v, err = Lookup(props, "acme", KeyAPIVersion)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	v, err = Lookup(props, "acme", KeyIdentity, "anonymous")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", v)

	_, err = Lookup(props, "acme", KeyIdentity)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "acme.identity")
}

func TestExpand(t *testing.T) {
	bag := NewBag(map[string]string{
		"region":   "eu-1",
		"endpoint": "https://${region}.example.com/${api-version}",
		"path":     "${endpoint}/v1",
		"unknown":  "${nope}",
		"self":     "${self}",
	}).Expand()

	assert.Equal(t, "https://eu-1.example.com/${api-version}", bag.GetOr("endpoint", ""))
	assert.Equal(t, "https://eu-1.example.com/${api-version}/v1", bag.GetOr("path", ""))
	assert.Equal(t, "${nope}", bag.GetOr("unknown", ""))
	assert.Equal(t, "${self}", bag.GetOr("self", ""))
}

func TestExpand_ScopedReference(t *testing.T) {
	bag := NewBag(map[string]string{
		"identity": "bob",
		"header":   "user=${apikit.identity}",
	}).Expand()
	assert.Equal(t, "user=bob", bag.GetOr("header", ""))
}

func TestFromEnviron(t *testing.T) {
	env := []string{
		"APIKIT_MAX_RETRIES=2",
		"AWS_EC2_ENDPOINT=https://ec2",
		"APIKIT_TLS__CA_FILE=/tmp/ca.pem",
		"HOME=/root",
		"APIKIT_=ignored",
		"malformed",
	}
	got := FromEnviron(env, "aws-ec2")
	assert.Equal(t, map[string]string{
		"apikit.max-retries": "2",
		"aws-ec2.endpoint":   "https://ec2",
		"apikit.tls.ca-file": "/tmp/ca.pem",
	}, got)
}

func TestSettings_Defaults(t *testing.T) {
	bag := Resolve(Sources{
		ProviderID: "acme",
		APIID:      "acme-api",
		Builtin:    Defaults(),
		Explicit: map[string]string{
			KeyProvider:     "acme",
			KeyAPI:          "acme-api",
			KeyEndpoint:     "https://api.acme.test",
			KeyIdentity:     "bob",
			KeyISO3166Codes: "US-CA, US-VA,",
		},
	})

	s, err := bag.Settings(Requirements{Identity: true})
	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, 5, s.MaxRedirects)
	assert.Equal(t, time.Duration(0), s.RequestTimeout)
	assert.Equal(t, 50*time.Millisecond, s.RetryDelayStart)
	assert.Equal(t, 20, s.IOWorkerThreads)
	assert.Equal(t, 0, s.UserThreads)
	assert.Equal(t, int64(64*1024), s.MaxErrorBody)
	assert.Equal(t, []string{"US-CA", "US-VA"}, s.ISO3166Codes)
}

func TestSettings_MissingRequired(t *testing.T) {
	bag := NewBag(map[string]string{KeyProvider: "acme", KeyAPI: "acme-api", KeyIdentity: "bob"})
	_, err := bag.Settings(Requirements{Identity: true})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingProperty))
	assert.Contains(t, err.Error(), "acme.endpoint")

	bag = NewBag(map[string]string{KeyProvider: "acme", KeyAPI: "acme-api", KeyEndpoint: "https://x", KeyIdentity: "  "})
	_, err = bag.Settings(Requirements{Identity: true})
	require.Error(t, err, "blank identity must not default to empty string")

	_, err = bag.Settings(Requirements{})
	require.NoError(t, err, "identity optional when not required")
}

func TestSettings_InvalidValues(t *testing.T) {
	base := map[string]string{KeyProvider: "acme", KeyAPI: "acme-api", KeyEndpoint: "https://x"}

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"not a number", KeyMaxRetries, "many"},
		{"negative", KeyMaxRedirects, "-1"},
		{"bad bool", KeyTrustAllCerts, "maybe"},
		{"bad timeout", KeyRequestTimeout, "1s"},
		{"bad size", KeyMaxErrorBody, "lots"},
		{"unknown retry policy", KeyRetryPolicy, "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewBag(base).Map()
			m[tt.key] = tt.val
			_, err := NewBag(m).Settings(Requirements{})
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err))
		})
	}
}

func TestSettings_InvalidEndpoint(t *testing.T) {
	bag := NewBag(map[string]string{KeyProvider: "acme", KeyAPI: "acme-api", KeyEndpoint: "not a url"})
	_, err := bag.Settings(Requirements{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Endpoint")
}

func TestBag_StringMasksCredential(t *testing.T) {
	bag := NewBag(map[string]string{KeyCredential: "s3cret", KeyIdentity: "bob"})
	assert.NotContains(t, bag.String(), "s3cret")
	assert.Contains(t, bag.String(), "identity=bob")
}

func TestBag_Immutable(t *testing.T) {
	src := map[string]string{"a": "1"}
	bag := NewBag(src)
	src["a"] = "2"
	m := bag.Map()
	m["a"] = "3"
	assert.Equal(t, "1", bag.GetOr("a", ""))
}
