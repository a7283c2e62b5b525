package util

import (
	"net/url"
	"strings"
)

// sensitiveQueryKeys are substrings of query parameter names whose values are masked.
var sensitiveQueryKeys = []string{
	"password", "passwd", "secret", "token", "signature", "credential", "apikey", "api_key", "access_key", "auth",
}

// IsSensitiveKey reports whether a parameter or header name usually carries a secret.
func IsSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range sensitiveQueryKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// RedactURL removes userinfo passwords and masks sensitive query values.
// Unparseable input is returned with everything after '?' masked.
func RedactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i] + "?***"
		}
		return raw
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for key, values := range q {
			if !IsSensitiveKey(key) {
				continue
			}
			for i := range values {
				values[i] = Mask(values[i])
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}
