package engine

import (
	"context"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/credentials"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/executor"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/parser"
	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/rest"
	"github.com/kbukum/apikit/util"
)

// Builder composes a Context from API or provider metadata, properties and
// modules. A Builder is not safe for concurrent use; Build may be called
// repeatedly and every call resolves the properties again.
type Builder struct {
	api       APIMetadata
	provider  *ProviderMetadata
	name      string
	explicit  map[string]string
	overrides map[string]string
	system    map[string]string
	systemSet bool
	supplier  credentials.Supplier
	modules   []Module
}

// NewBuilder starts a Context for api without a provider.
func NewBuilder(api APIMetadata) *Builder {
	return &Builder{
		api:       api,
		explicit:  make(map[string]string),
		overrides: make(map[string]string),
	}
}

// ForProvider starts a Context for the API hosted by p.
func ForProvider(p ProviderMetadata) *Builder {
	b := NewBuilder(p.API)
	b.provider = &p
	return b
}

// Name sets the Context name. The default is derived from the provider,
// endpoint, api version and identity.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Endpoint sets the endpoint.
func (b *Builder) Endpoint(endpoint string) *Builder {
	b.explicit[properties.KeyEndpoint] = endpoint
	return b
}

// APIVersion sets the api-version property.
func (b *Builder) APIVersion(v string) *Builder {
	b.explicit[properties.KeyAPIVersion] = v
	return b
}

// BuildVersion sets the build-version property.
func (b *Builder) BuildVersion(v string) *Builder {
	b.explicit[properties.KeyBuildVersion] = v
	return b
}

// Credentials sets a fixed identity and credential.
func (b *Builder) Credentials(identity, credential string) *Builder {
	b.explicit[properties.KeyIdentity] = identity
	b.explicit[properties.KeyCredential] = credential
	return b
}

// CredentialsSupplier makes request filters ask s for credentials on each
// request. Identity and credential properties become optional.
func (b *Builder) CredentialsSupplier(s credentials.Supplier) *Builder {
	b.supplier = s
	return b
}

// Overrides merges props into the override layer.
func (b *Builder) Overrides(props map[string]string) *Builder {
	maps.Copy(b.overrides, props)
	return b
}

// Property sets one override.
func (b *Builder) Property(key, value string) *Builder {
	b.overrides[key] = value
	return b
}

// System replaces the system layer, which defaults to the scoped process
// environment. Pass an empty map to ignore the environment.
func (b *Builder) System(props map[string]string) *Builder {
	b.system = maps.Clone(props)
	b.systemSet = true
	return b
}

// Modules appends modules, applied in order after the API's own modules.
func (b *Builder) Modules(m ...Module) *Builder {
	b.modules = append(b.modules, m...)
	return b
}

// Properties resolves the property bag without building a Context.
func (b *Builder) Properties() properties.Bag {
	providerID := b.providerID()
	explicit := maps.Clone(b.explicit)
	explicit[properties.KeyAPI] = b.api.ID
	explicit[properties.KeyProvider] = providerID

	var providerLayer map[string]string
	if b.provider != nil {
		providerLayer = b.provider.defaults()
		if len(b.provider.ISO3166Codes) > 0 {
			providerLayer[properties.KeyISO3166Codes] = strings.Join(b.provider.ISO3166Codes, ",")
		}
	}
	system := b.system
	if !b.systemSet {
		system = properties.FromEnviron(os.Environ(), providerID)
	}
	return properties.Resolve(properties.Sources{
		ProviderID: providerID,
		APIID:      b.api.ID,
		Builtin:    properties.Defaults(),
		API:        b.api.defaults(),
		Provider:   providerLayer,
		Explicit:   explicit,
		Overrides:  b.overrides,
		System:     system,
	}).Expand()
}

func (b *Builder) providerID() string {
	if b.provider != nil && b.provider.ID != "" {
		return b.provider.ID
	}
	return b.api.ID
}

// Build resolves the properties, validates the catalog and wires the
// Context. Every configuration problem is reported here, never at call time.
func (b *Builder) Build(ctx context.Context) (*Context, error) {
	bag := b.Properties()
	settings, err := bag.Settings(properties.Requirements{
		Identity:   b.supplier == nil && !b.api.Anonymous,
		Credential: b.supplier == nil && !b.api.Anonymous && b.api.CredentialName != "",
	})
	if err != nil {
		return nil, err
	}

	w := &Wiring{
		Strategies:  NewStrategies(),
		Logger:      logger.GetGlobalLogger(),
		Store:       credentials.NewMemoryStore(),
		IOThreads:   settings.IOWorkerThreads,
		UserThreads: settings.UserThreads,
		Now:         time.Now,
	}
	for _, m := range append(append([]Module{}, b.api.Modules...), b.modules...) {
		if err := m.Configure(w); err != nil {
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.Configuration("module failed: %v", err).WithCause(err)
		}
	}

	table, err := catalog.NewTable(b.api.Catalog, w.Strategies)
	if err != nil {
		return nil, err
	}

	name := b.name
	if name == "" {
		name = contextName(settings)
	}
	log := w.Logger.WithComponent("apikit").WithFields(logger.Fields(
		logger.FieldContext, name,
		logger.FieldProvider, settings.Provider,
		logger.FieldAPI, settings.API,
	))

	supplier := b.supplier
	if supplier == nil {
		supplier = credentials.FromStore(w.Store, name, credentials.Credentials{
			Identity:   settings.Identity,
			Credential: settings.Credential,
		})
	}
	env := FilterEnv{Credentials: supplier, Settings: settings, Now: w.Now}

	contextFilters, err := w.Strategies.filtersFor(w.Filters, env)
	if err != nil {
		return nil, err
	}
	requests, err := rest.NewBuilder(settings.Endpoint,
		rest.WithTokens(settings.APIVersion, settings.BuildVersion),
		rest.WithProperties(bag),
		rest.WithFilters(contextFilters...),
	)
	if err != nil {
		return nil, err
	}

	c := &Context{
		name:       name,
		bag:        bag,
		settings:   settings,
		table:      table,
		requests:   requests,
		strategies: w.Strategies,
		ops:        make(map[string]*boundOperation, table.Len()),
		log:        log,
		metrics:    w.Metrics,
		registry:   component.NewRegistry(log),
	}
	for _, key := range table.Keys() {
		op, _ := table.Lookup(key)
		bound, err := c.bind(op, env)
		if err != nil {
			return nil, err
		}
		c.ops[key] = bound
	}

	c.io, err = c.newExecutor(w.IOExecutor, "io-executor", w.IOThreads)
	if err != nil {
		return nil, err
	}
	c.user, err = c.newExecutor(w.UserExecutor, "user-executor", w.UserThreads)
	if err != nil {
		c.release(ctx)
		return nil, err
	}

	classifier := httpclient.DefaultClassifier()
	if settings.RetryPolicy == properties.RetryPolicyRetryablehttp {
		classifier = httpclient.NewClassifier(httpclient.RetryablehttpRule())
	}
	if w.RetryRules != nil {
		classifier = httpclient.NewClassifier(w.RetryRules...)
	}
	opts := []httpclient.Option{
		httpclient.WithExecutor(c.io),
		httpclient.WithLogger(log),
		httpclient.WithClassifier(classifier),
	}
	if w.Tracing {
		opts = append(opts, httpclient.WithMiddleware(httpclient.WithTracing()))
	}
	opts = append(opts,
		httpclient.WithMiddleware(httpclient.WithLogging(log)),
		httpclient.WithMetricsRecorder(w.Metrics),
		httpclient.WithMiddleware(w.Middlewares...),
	)
	if w.Transport != nil {
		opts = append(opts, httpclient.WithTransport(w.Transport))
	}
	c.dispatcher, err = httpclient.New(httpclient.ConfigFromSettings("dispatcher", settings), opts...)
	if err != nil {
		c.release(ctx)
		return nil, err
	}
	if err := c.registry.Register(c.dispatcher); err != nil {
		c.release(ctx)
		return nil, apperrors.Configuration("%s", err.Error()).WithCause(err)
	}

	if err := c.registry.StartAll(ctx); err != nil {
		c.release(ctx)
		return nil, err
	}
	log.Info("context built", logger.Fields(
		logger.FieldURL, util.RedactURL(settings.Endpoint),
		"operations", table.Len(),
		"io_threads", c.io.Size(),
		"user_threads", c.user.Size(),
	))
	return c, nil
}

// newExecutor returns given when set, otherwise a new executor of size that the
// Context shuts down on close.
func (c *Context) newExecutor(given executor.Executor, name string, size int) (executor.Executor, error) {
	if given != nil {
		return given, nil
	}
	exec := executor.New(c.name+"-"+name, size)
	err := c.registry.Register(&component.Func{
		ComponentName: name,
		StopFunc:      exec.Shutdown,
	})
	if err != nil {
		_ = exec.Shutdown(context.Background())
		return nil, apperrors.Configuration("%s", err.Error()).WithCause(err)
	}
	c.owned = append(c.owned, exec)
	return exec, nil
}

// release shuts down executors created for a Context whose build failed.
func (c *Context) release(ctx context.Context) {
	for _, exec := range c.owned {
		_ = exec.Shutdown(ctx)
	}
}

// contextName derives a stable name so equal configurations share a name.
func contextName(s properties.Settings) string {
	key := strings.Join([]string{s.Provider, s.Endpoint, s.APIVersion, s.Identity}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// filtersFor instantiates the named filters.
func (s *Strategies) pageParserFor(p catalog.PagingSpec) (parser.PageParser[any], error) {
	if p.Items == "" && p.Marker == "" {
		if pages, ok := s.pages[p.Parser]; ok {
			return pages, nil
		}
	}
	factory, ok := s.pagePath[p.Parser]
	if !ok {
		return nil, apperrors.Configuration("page parser %q does not take items or marker paths", p.Parser)
	}
	return factory(p.Items, p.Marker), nil
}

func (s *Strategies) filtersFor(names []string, env FilterEnv) ([]rest.Filter, error) {
	out := make([]rest.Filter, 0, len(names))
	for _, name := range names {
		factory, ok := s.filters[name]
		if !ok {
			return nil, apperrors.Configuration("filter %q is not registered", name)
		}
		out = append(out, factory(env))
	}
	return out, nil
}
