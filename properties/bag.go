package properties

import (
	"maps"
	"slices"
	"strings"
)

// Bag is an immutable snapshot of resolved properties.
type Bag struct {
	values map[string]string
}

// NewBag copies m into a new Bag.
func NewBag(m map[string]string) Bag {
	return Bag{values: maps.Clone(m)}
}

// Get returns the value stored under key.
func (b Bag) Get(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetOr returns the value stored under key, or def when absent.
func (b Bag) GetOr(key, def string) string {
	if v, ok := b.values[key]; ok {
		return v
	}
	return def
}

// Lookup performs a scoped lookup (see Lookup) over the bag.
func (b Bag) Lookup(providerID, key string, fallback ...string) (string, error) {
	return Lookup(b.values, providerID, key, fallback...)
}

// Keys returns the keys in sorted order.
func (b Bag) Keys() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Len returns the number of properties.
func (b Bag) Len() int { return len(b.values) }

// Map returns a copy of the underlying values.
func (b Bag) Map() map[string]string { return maps.Clone(b.values) }

// Equal reports whether both bags hold the same keys and values.
func (b Bag) Equal(other Bag) bool { return maps.Equal(b.values, other.values) }

// String renders the bag in sorted key order with secrets masked.
func (b Bag) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range b.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		if k == KeyCredential {
			sb.WriteString("***")
		} else {
			sb.WriteString(b.values[k])
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
