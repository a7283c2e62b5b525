package engine

import (
	"time"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/credentials"
	"github.com/kbukum/apikit/fallback"
	"github.com/kbukum/apikit/parser"
	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/rest"
)

// FilterEnv is what a filter factory may draw on when a Context is built.
type FilterEnv struct {
	Credentials credentials.Supplier
	Settings    properties.Settings
	Now         func() time.Time
}

// FilterFactory creates a request filter for one Context.
type FilterFactory func(env FilterEnv) rest.Filter

// PageParserFactory creates a page parser for the items and marker paths of
// a paging spec.
type PageParserFactory func(itemsPath, markerPath string) parser.PageParser[any]

// Strategies maps the names used in catalogs to implementations. A zero
// value is empty; NewStrategies returns one holding the shipped defaults.
// It is only mutated while modules configure a Context.
type Strategies struct {
	binders  map[string]rest.Binder
	parsers  map[string]parser.Parser[any]
	pages    map[string]parser.PageParser[any]
	pagePath map[string]PageParserFactory
	fallback map[string]fallback.Fallback
	filters  map[string]FilterFactory
}

// NewStrategies returns the default strategies.
func NewStrategies() *Strategies {
	s := &Strategies{}
	s.Binder(rest.BinderJSON, rest.JSON())
	s.Binder(rest.BinderJSONMap, rest.JSONMap())
	s.Binder(rest.BinderForm, rest.Form())
	s.Binder(rest.BinderString, rest.String())

	s.Parser(parser.NameJSON, parser.JSON[any]())
	s.Parser(parser.NameString, parser.Erase(parser.String()))
	s.Parser(parser.NameBytes, parser.Erase(parser.Bytes()))
	s.Parser(parser.NameVoid, parser.Void())
	s.Parser(parser.NameTrueIf2xx, parser.Erase(parser.TrueIf2xx()))

	s.PageParser(parser.NameJSON, parser.JSONPage[any]("", ""))
	s.PagePaths(parser.NameJSON, func(itemsPath, markerPath string) parser.PageParser[any] {
		return parser.JSONPage[any](itemsPath, markerPath)
	})

	for name, fb := range fallback.Defaults() {
		s.Fallback(name, fb)
	}

	s.Filter(rest.FilterBasicAuth, func(env FilterEnv) rest.Filter { return rest.BasicAuth(env.Credentials) })
	s.Filter(rest.FilterBearerToken, func(env FilterEnv) rest.Filter { return rest.BearerToken(env.Credentials) })
	s.Filter(rest.FilterJWTBearer, func(env FilterEnv) rest.Filter {
		return rest.JWTBearer(env.Credentials, jwtTTL(env.Settings), env.Now)
	})
	s.Filter(rest.FilterRequestID, func(FilterEnv) rest.Filter { return rest.RequestID() })
	s.Filter(rest.FilterDate, func(env FilterEnv) rest.Filter { return rest.Date(env.Now) })
	s.Filter(rest.FilterUserAgent, func(env FilterEnv) rest.Filter { return rest.UserAgent(env.Settings.UserAgent) })
	return s
}

func jwtTTL(s properties.Settings) time.Duration {
	if s.RequestTimeout > 0 {
		return s.RequestTimeout + time.Minute
	}
	return 5 * time.Minute
}

// Binder registers b under name, replacing any previous one.
func (s *Strategies) Binder(name string, b rest.Binder) {
	if s.binders == nil {
		s.binders = make(map[string]rest.Binder)
	}
	s.binders[name] = b
}

// Parser registers p under name.
func (s *Strategies) Parser(name string, p parser.Parser[any]) {
	if s.parsers == nil {
		s.parsers = make(map[string]parser.Parser[any])
	}
	s.parsers[name] = p
}

// PageParser registers p under name.
func (s *Strategies) PageParser(name string, p parser.PageParser[any]) {
	if s.pages == nil {
		s.pages = make(map[string]parser.PageParser[any])
	}
	s.pages[name] = p
}

// PagePaths registers a factory for page parsers configured with items and
// marker paths. A paging spec naming either path is served by it.
func (s *Strategies) PagePaths(name string, f PageParserFactory) {
	if s.pagePath == nil {
		s.pagePath = make(map[string]PageParserFactory)
	}
	s.pagePath[name] = f
}

// Fallback registers f under name.
func (s *Strategies) Fallback(name string, f fallback.Fallback) {
	if s.fallback == nil {
		s.fallback = make(map[string]fallback.Fallback)
	}
	s.fallback[name] = f
}

// Filter registers a filter factory under name.
func (s *Strategies) Filter(name string, f FilterFactory) {
	if s.filters == nil {
		s.filters = make(map[string]FilterFactory)
	}
	s.filters[name] = f
}

// HasBinder reports whether a binder is registered under name.
func (s *Strategies) HasBinder(name string) bool {
	_, ok := s.binders[name]
	return ok
}

func (s *Strategies) HasParser(name string) bool {
	_, ok := s.parsers[name]
	return ok
}

func (s *Strategies) HasPageParser(name string) bool {
	if _, ok := s.pages[name]; ok {
		return true
	}
	_, ok := s.pagePath[name]
	return ok
}

func (s *Strategies) HasFallback(name string) bool {
	_, ok := s.fallback[name]
	return ok
}

func (s *Strategies) HasFilter(name string) bool {
	_, ok := s.filters[name]
	return ok
}

var _ catalog.References = (*Strategies)(nil)

// RegisterParser registers a typed parser under name.
func RegisterParser[T any](s *Strategies, name string, p parser.Parser[T]) {
	s.Parser(name, parser.Erase(p))
}

// RegisterPageParser registers a typed page parser under name.
func RegisterPageParser[T any](s *Strategies, name string, p parser.PageParser[T]) {
	s.PageParser(name, parser.ErasePage(p))
}
