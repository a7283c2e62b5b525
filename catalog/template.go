package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// Template is a parsed path template such as "/items/{id}/tags/{tag}".
type Template struct {
	raw   string
	parts []part
}

type part struct {
	text     string
	variable bool
}

// ParseTemplate parses a path template. Placeholders are written {name}; names
// may contain letters, digits, '-', '_' and '.'.
func ParseTemplate(s string) (Template, error) {
	t := Template{raw: s}
	rest := s
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		closing := strings.IndexByte(rest, '}')
		if open < 0 {
			if closing >= 0 {
				return Template{}, fmt.Errorf("template %q: unmatched '}'", s)
			}
			t.parts = append(t.parts, part{text: rest})
			break
		}
		if closing >= 0 && closing < open {
			return Template{}, fmt.Errorf("template %q: unmatched '}'", s)
		}
		if open > 0 {
			t.parts = append(t.parts, part{text: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return Template{}, fmt.Errorf("template %q: unterminated placeholder", s)
		}
		name := rest[open+1 : open+end]
		if !validName(name) {
			return Template{}, fmt.Errorf("template %q: invalid placeholder name %q", s, name)
		}
		t.parts = append(t.parts, part{text: name, variable: true})
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns placeholder names in order of first appearance.
func (t Template) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range t.parts {
		if p.variable && !seen[p.text] {
			seen[p.text] = true
			names = append(names, p.text)
		}
	}
	return names
}

// Expand substitutes placeholders with path-escaped values. It returns the
// name of the first placeholder lookup could not resolve. The values "." and
// ".." are rejected since servers resolve them as relative segments.
func (t Template) Expand(lookup func(name string) (string, bool)) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		if !p.variable {
			b.WriteString(p.text)
			continue
		}
		v, ok := lookup(p.text)
		if !ok {
			return "", &UnresolvedError{Name: p.text}
		}
		if v == "." || v == ".." {
			return "", fmt.Errorf("placeholder {%s} cannot be %q", p.text, v)
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

// String returns the raw template.
func (t Template) String() string { return t.raw }

// UnresolvedError reports a placeholder without a value.
type UnresolvedError struct {
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved placeholder {%s}", e.Name)
}

// ReplaceTokens replaces {name} tokens in s for which lookup has a value.
// Unknown tokens are left as they are; values are not escaped.
func ReplaceTokens(s string, lookup func(name string) (string, bool)) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	rest := s
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		name := rest[open+1 : open+end]
		b.WriteString(rest[:open])
		if v, ok := lookup(name); ok && validName(name) {
			b.WriteString(v)
		} else {
			b.WriteString(rest[open : open+end+1])
		}
		rest = rest[open+end+1:]
	}
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
