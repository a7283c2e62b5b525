package properties

import (
	"regexp"
	"strings"
)

// maxExpandDepth bounds nested ${...} references.
const maxExpandDepth = 8

var reference = regexp.MustCompile(`\$\{([^${}]+)\}`)

// Expand replaces ${key} references in values with the referenced property.
// References may use the bare, global or scoped key form. Unknown references
// are left untouched so literal "${...}" text survives.
func (b Bag) Expand() Bag {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	for range maxExpandDepth {
		changed := false
		for k, v := range out {
			if !strings.Contains(v, "${") {
				continue
			}
			expanded := reference.ReplaceAllStringFunc(v, func(ref string) string {
				name := ref[2 : len(ref)-1]
				if name == k {
					return ref
				}
				if val, ok := out[name]; ok {
					return val
				}
				if base, rank := canonical(name, "", ""); rank > 0 {
					if val, ok := out[base]; ok {
						return val
					}
				}
				if i := strings.IndexByte(name, '.'); i > 0 {
					if val, ok := out[name[i+1:]]; ok {
						return val
					}
				}
				return ref
			})
			if expanded != v {
				out[k] = expanded
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return Bag{values: out}
}
