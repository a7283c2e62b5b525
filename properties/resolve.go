package properties

import (
	"regexp"
	"strings"

	apperrors "github.com/kbukum/apikit/errors"
)

// Sources are the inputs of a resolution pass. Nil maps are treated as empty.
type Sources struct {
	// ProviderID scopes provider-specific keys ("<provider>.<key>").
	ProviderID string
	// APIID scopes api-specific keys ("<api>.<key>").
	APIID string

	Builtin   map[string]string
	API       map[string]string
	Provider  map[string]string
	Explicit  map[string]string
	Overrides map[string]string
	// System holds environment supplied properties. Only keys scoped to
	// apikit, the provider or the api are kept.
	System map[string]string
}

// Resolve merges the layers of src into an immutable Bag.
// The result depends only on the inputs, never on map iteration order.
func Resolve(src Sources) Bag {
	merged := make(map[string]string)
	layers := []map[string]string{
		src.Builtin,
		src.API,
		src.Provider,
		src.Explicit,
		src.Overrides,
		filterSystem(src.System, src.ProviderID, src.APIID),
	}
	for _, layer := range layers {
		for key, value := range foldLayer(layer, src.ProviderID, src.APIID) {
			merged[key] = value
		}
	}
	return Bag{values: merged}
}

// Lookup searches props for key scoped to providerID, then the global
// "apikit.<key>", then the bare key, then the fallback. It fails with a
// missing-property error when none is present.
func Lookup(props map[string]string, providerID, key string, fallback ...string) (string, error) {
	if providerID != "" {
		if v, ok := props[providerID+"."+key]; ok {
			return v, nil
		}
	}
	if v, ok := props[GlobalScope+"."+key]; ok {
		return v, nil
	}
	if v, ok := props[key]; ok {
		return v, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	scope := providerID
	if scope == "" {
		scope = GlobalScope
	}
	return "", apperrors.MissingProperty(key, scope)
}

type rankedValue struct {
	rank  int
	value string
}

// foldLayer strips scope prefixes, keeping the most specific value per key.
func foldLayer(layer map[string]string, providerID, apiID string) map[string]string {
	ranked := make(map[string]rankedValue, len(layer))
	for key, value := range layer {
		base, rank := canonical(key, providerID, apiID)
		if cur, ok := ranked[base]; ok && cur.rank >= rank {
			continue
		}
		ranked[base] = rankedValue{rank: rank, value: value}
	}
	out := make(map[string]string, len(ranked))
	for k, rv := range ranked {
		out[k] = rv.value
	}
	return out
}

func canonical(key, providerID, apiID string) (string, int) {
	switch {
	case providerID != "" && strings.HasPrefix(key, providerID+"."):
		return strings.TrimPrefix(key, providerID+"."), 3
	case apiID != "" && strings.HasPrefix(key, apiID+"."):
		return strings.TrimPrefix(key, apiID+"."), 2
	case strings.HasPrefix(key, GlobalScope+"."):
		return strings.TrimPrefix(key, GlobalScope+"."), 1
	default:
		return key, 0
	}
}

func filterSystem(system map[string]string, providerID, apiID string) map[string]string {
	if len(system) == 0 {
		return nil
	}
	scopes := []string{regexp.QuoteMeta(GlobalScope)}
	if providerID != "" {
		scopes = append(scopes, regexp.QuoteMeta(providerID))
	}
	if apiID != "" {
		scopes = append(scopes, regexp.QuoteMeta(apiID))
	}
	pattern := regexp.MustCompile(`^(` + strings.Join(scopes, "|") + `)\.`)

	out := make(map[string]string)
	for k, v := range system {
		if pattern.MatchString(k) {
			out[k] = v
		}
	}
	return out
}
