package properties

import (
	"strings"
)

// FromEnviron converts environment entries ("KEY=value") into scoped property keys.
// For every scope in apikit plus ids, a variable named after the upper-cased scope
// (dashes as underscores) followed by "_" maps to "<scope>.<rest>", where rest is
// lower-cased with underscores turned into dashes:
//
//	APIKIT_MAX_RETRIES=2   ->  apikit.max-retries=2
//	AWS_EC2_ENDPOINT=...   ->  aws-ec2.endpoint=...   (ids contains "aws-ec2")
//	APIKIT_TLS__CA_FILE=.. ->  apikit.tls.ca-file=..
//
// Longer scopes are matched first so "AWS_EC2_" wins over a hypothetical "AWS_".
func FromEnviron(environ []string, ids ...string) map[string]string {
	scopes := append([]string{GlobalScope}, ids...)
	type prefix struct{ env, scope string }
	prefixes := make([]prefix, 0, len(scopes))
	for _, s := range scopes {
		if s == "" {
			continue
		}
		prefixes = append(prefixes, prefix{env: strings.ToUpper(strings.ReplaceAll(s, "-", "_")) + "_", scope: s})
	}
	// longest prefix first
	for i := 1; i < len(prefixes); i++ {
		for j := i; j > 0 && len(prefixes[j].env) > len(prefixes[j-1].env); j-- {
			prefixes[j], prefixes[j-1] = prefixes[j-1], prefixes[j]
		}
	}

	out := make(map[string]string)
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		for _, p := range prefixes {
			if !strings.HasPrefix(name, p.env) || len(name) == len(p.env) {
				continue
			}
			rest := strings.ReplaceAll(name[len(p.env):], "__", ".")
			rest = strings.ToLower(strings.ReplaceAll(rest, "_", "-"))
			out[p.scope+"."+rest] = value
			break
		}
	}
	return out
}
