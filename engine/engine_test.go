package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kbukum/apikit/catalog"
	"github.com/kbukum/apikit/credentials"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/fallback"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/parser"
	"github.com/kbukum/apikit/properties"
	"github.com/kbukum/apikit/rest"
	"github.com/kbukum/apikit/security/tlstest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func itemsCatalog() catalog.Catalog {
	id := catalog.Param{Name: "id", In: catalog.InPath}
	return catalog.Catalog{
		API: "items",
		Operations: []catalog.OperationSpec{
			{Key: "getItem", Method: "GET", Path: "/items/{id}", Params: []catalog.Param{id},
				Parser: parser.NameJSON, Fallback: fallback.NameNullOnNotFound},
			{Key: "getItemStrict", Method: "GET", Path: "/items/{id}", Params: []catalog.Param{id},
				Parser: parser.NameJSON},
			{Key: "itemExists", Method: "HEAD", Path: "/items/{id}", Params: []catalog.Param{id},
				Parser: parser.NameTrueIf2xx, Fallback: fallback.NameFalseOnNotFound},
			{Key: "createItem", Method: "POST", Path: "/items", Binder: rest.BinderJSON, Parser: parser.NameJSON,
				Params: []catalog.Param{{Name: "name", In: catalog.InPayload, Required: true}}},
			{Key: "listItems", Method: "GET", Path: "/items", Paging: &catalog.PagingSpec{Parser: "items-page"},
				Params: []catalog.Param{{Name: "limit", In: catalog.InQuery}},
				Fallback: fallback.NameEmptyListOnNotFound},
		},
	}
}

func itemsAPI() APIMetadata {
	return APIMetadata{
		ID:        "items-api",
		Name:      "Items",
		Version:   "v1",
		Anonymous: true,
		Catalog:   itemsCatalog(),
		Modules: []Module{StrategiesModule(func(s *Strategies) {
			RegisterPageParser(s, "items-page", parser.JSONPage[any]("items", "next"))
		})},
	}
}

func newBuilder(endpoint string) *Builder {
	return ForProvider(ProviderMetadata{ID: "acme", API: itemsAPI()}).
		Endpoint(endpoint).
		System(map[string]string{}).
		Property(properties.KeyMaxRetries, "0").
		Modules(LoggingModule(logger.NewNop()))
}

func build(t *testing.T, b *Builder) *Context {
	t.Helper()
	c, err := b.Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

type itemServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newItemServer(t *testing.T, handler http.HandlerFunc) *itemServer {
	t.Helper()
	s := &itemServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, recorded{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body), Header: r.Header.Clone(),
		})
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *itemServer) recorded() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorded(nil), s.requests...)
}

func itemHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/items/42" {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"42","name":"answer"}`)
		return
	}
	http.NotFound(w, r)
}

func TestInvoke_GetItem(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c := build(t, newBuilder(srv.URL).Modules(SingleThreadedModule()))

	v, err := c.Invoke(context.Background(), "getItem", rest.Args{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "42", "name": "answer"}, v)

	reqs := srv.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/items/42", reqs[0].Path)
	assert.Empty(t, reqs[0].Body)

	it, err := Call[item](context.Background(), c, "getItem", rest.Args{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, item{ID: "42", Name: "answer"}, it)
}

func TestInvoke_NotFoundFallsBackToNull(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c := build(t, newBuilder(srv.URL))

	v, err := c.Invoke(context.Background(), "getItem", rest.Args{"id": "7"})
	require.NoError(t, err)
	assert.Nil(t, v)

	it, err := Call[*item](context.Background(), c, "getItem", rest.Args{"id": "7"})
	require.NoError(t, err)
	assert.Nil(t, it)

	exists, err := Call[bool](context.Background(), c, "itemExists", rest.Args{"id": "7"})
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = Call[bool](context.Background(), c, "itemExists", rest.Args{"id": "42"})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInvoke_NotFoundWithoutFallbackPropagates(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c := build(t, newBuilder(srv.URL))

	_, err := c.Invoke(context.Background(), "getItemStrict", rest.Args{"id": "7"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRemote(err))
	status, ok := apperrors.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Len(t, srv.recorded(), 1, "client errors are not retried")
}

func TestInvoke_ArgumentErrorsBeforeIO(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c := build(t, newBuilder(srv.URL))

	_, err := c.Invoke(context.Background(), "getItem", rest.Args{})
	require.Error(t, err)
	assert.True(t, apperrors.IsArgument(err), "fallback must not swallow argument errors")

	_, err = c.Invoke(context.Background(), "getItem", rest.Args{"id": "42", "extra": 1})
	assert.True(t, apperrors.IsArgument(err))

	_, err = c.Invoke(context.Background(), "noSuchOperation", nil)
	assert.True(t, apperrors.IsArgument(err))

	assert.Empty(t, srv.recorded())
}

func TestInvoke_PayloadBinder(t *testing.T) {
	srv := newItemServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"43","name":"new"}`)
	})
	c := build(t, newBuilder(srv.URL))

	it, err := Call[item](context.Background(), c, "createItem", rest.Args{"name": "new"})
	require.NoError(t, err)
	assert.Equal(t, "43", it.ID)

	reqs := srv.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.JSONEq(t, `{"name":"new"}`, reqs[0].Body)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
}

func pagedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Query().Get("marker") {
	case "":
		fmt.Fprint(w, `{"items":[{"id":"1"},{"id":"2"}],"next":"m1"}`)
	case "m1":
		fmt.Fprint(w, `{"items":[{"id":"3"}]}`)
	default:
		http.Error(w, "bad marker", http.StatusBadRequest)
	}
}

func TestPages_FlattenedInOrder(t *testing.T) {
	srv := newItemServer(t, pagedHandler)
	c := build(t, newBuilder(srv.URL))

	pages, err := c.Pages("listItems", rest.Args{"limit": 2})
	require.NoError(t, err)
	assert.Empty(t, srv.recorded(), "no request before the first page is asked for")

	it := pages.Items()
	var ids []string
	for {
		v, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, v.(map[string]any)["id"].(string))
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	reqs := srv.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "limit=2", reqs[0].Query)
	assert.Equal(t, "limit=2&marker=m1", reqs[1].Query)

	page, err := pages.Next(context.Background())
	require.NoError(t, err, "asking past the end yields an empty page")
	assert.Empty(t, page.Items)
	assert.Len(t, srv.recorded(), 2)
}

func TestList_Typed(t *testing.T) {
	srv := newItemServer(t, pagedHandler)
	c := build(t, newBuilder(srv.URL))

	pages, err := List[item](c, "listItems", nil)
	require.NoError(t, err)
	all, err := pages.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}, {ID: "2"}, {ID: "3"}}, all)

	_, err = List[item](c, "getItem", nil)
	assert.True(t, apperrors.IsArgument(err), "non paginated operations cannot be listed")
}

const cursorCatalog = `api: items
operations:
  - key: listItems
    method: GET
    path: /items
    paging:
      parser: json
      items: data.items
      marker: data.cursor
      marker_param: cursor
`

func TestPages_CatalogPaths(t *testing.T) {
	srv := newItemServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"data":{"items":[{"id":"1"},{"id":"2"}],"cursor":"c1"}}`)
		case "c1":
			fmt.Fprint(w, `{"data":{"items":[{"id":"3"}]}}`)
		default:
			http.Error(w, "bad cursor", http.StatusBadRequest)
		}
	})
	cat, err := catalog.Load(strings.NewReader(cursorCatalog))
	require.NoError(t, err)

	api := APIMetadata{ID: "items", Anonymous: true, Catalog: cat}
	c := build(t, ForProvider(ProviderMetadata{ID: "acme", API: api}).
		Endpoint(srv.URL).
		System(map[string]string{}).
		Property(properties.KeyMaxRetries, "0").
		Modules(LoggingModule(logger.NewNop())))

	all, err := List[item](c, "listItems", nil)
	require.NoError(t, err)
	items, err := all.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}, {ID: "2"}, {ID: "3"}}, items)

	reqs := srv.recorded()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Query)
	assert.Equal(t, "cursor=c1", reqs[1].Query)
}

func TestBuild_PagePathsNeedFactory(t *testing.T) {
	api := itemsAPI()
	api.Catalog.Operations[4].Paging = &catalog.PagingSpec{Parser: "items-page", Marker: "next"}

	_, err := ForProvider(ProviderMetadata{ID: "acme", API: api}).
		Endpoint("https://api.acme.test").
		System(map[string]string{}).
		Modules(LoggingModule(logger.NewNop())).
		Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "items-page")
}

func TestPages_NotFoundEndsWithEmptyPage(t *testing.T) {
	srv := newItemServer(t, http.NotFound)
	c := build(t, newBuilder(srv.URL))

	pages, err := c.Pages("listItems", nil)
	require.NoError(t, err)
	all, err := pages.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.True(t, pages.Done())
}

func TestInvokeAsync_OnPool(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c := build(t, newBuilder(srv.URL).
		Property(properties.KeyIOWorkerThreads, "2").
		Property(properties.KeyUserThreads, "1"))
	assert.Equal(t, 1, c.UserExecutor().Size())

	found := c.InvokeAsync(context.Background(), "getItem", rest.Args{"id": "42"})
	missing := c.InvokeAsync(context.Background(), "getItem", rest.Args{"id": "7"})

	v, err := found.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "42", "name": "answer"}, v)
	v, err = missing.Await(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v)

	it, err := CallAsync[item](context.Background(), c, "getItem", rest.Args{"id": "42"}).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "answer", it.Name)
}

func TestInvokeAsync_Cancel(t *testing.T) {
	release := make(chan struct{})
	srv := newItemServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)
	c := build(t, newBuilder(srv.URL).Property(properties.KeyIOWorkerThreads, "2"))

	f := c.InvokeAsync(context.Background(), "getItemStrict", rest.Args{"id": "1"})
	time.Sleep(20 * time.Millisecond)
	f.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Await(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCancelled), "got %v", err)
}

func TestClose_IdempotentAndGuarded(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	c, err := newBuilder(srv.URL).Property(properties.KeyIOWorkerThreads, "4").Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.True(t, c.IsClosed())

	_, err = c.Invoke(context.Background(), "getItem", rest.Args{"id": "42"})
	assert.True(t, apperrors.IsClosed(err))

	_, err = c.InvokeAsync(context.Background(), "getItem", rest.Args{"id": "42"}).Await(context.Background())
	assert.True(t, apperrors.IsClosed(err))

	_, err = c.Pages("listItems", nil)
	assert.True(t, apperrors.IsClosed(err))

	assert.Equal(t, observability.HealthStatusDown, c.Health(context.Background()).Status)
	assert.Empty(t, srv.recorded())
}

func TestClose_StopsPagesInFlight(t *testing.T) {
	srv := newItemServer(t, pagedHandler)
	c, err := newBuilder(srv.URL).Build(context.Background())
	require.NoError(t, err)

	pages, err := c.Pages("listItems", nil)
	require.NoError(t, err)
	_, err = pages.Next(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	_, err = pages.Next(context.Background())
	assert.True(t, apperrors.IsClosed(err))
}

func TestBuild_InvalidCatalog(t *testing.T) {
	api := itemsAPI()
	api.Catalog.Operations = append(api.Catalog.Operations,
		catalog.OperationSpec{Key: "broken", Method: "GET", Path: "/x/{missing}", Parser: "no-such-parser"})

	_, err := ForProvider(ProviderMetadata{ID: "acme", API: api}).
		Endpoint("https://api.acme.test").
		System(map[string]string{}).
		Modules(LoggingModule(logger.NewNop())).
		Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "no-such-parser")
}

func TestBuild_UnknownContextFilter(t *testing.T) {
	_, err := newBuilder("https://api.acme.test").Modules(FiltersModule("no-such-filter")).Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestBuild_RequiredProperties(t *testing.T) {
	_, err := ForProvider(ProviderMetadata{ID: "acme", API: itemsAPI()}).
		System(map[string]string{}).
		Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingProperty))
	assert.Contains(t, err.Error(), "acme.endpoint")

	api := itemsAPI()
	api.Anonymous = false
	api.CredentialName = "password"
	_, err = NewBuilder(api).Endpoint("https://api.acme.test").System(map[string]string{}).Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMissingProperty))

	c, err := NewBuilder(api).
		Endpoint("https://api.acme.test").
		System(map[string]string{}).
		CredentialsSupplier(credentials.Static(credentials.Credentials{Identity: "bob", Credential: "pw"})).
		Modules(LoggingModule(logger.NewNop())).
		Build(context.Background())
	require.NoError(t, err, "a supplier makes identity and credential optional")
	require.NoError(t, c.Close(context.Background()))
}

func TestBuild_PropertyLayers(t *testing.T) {
	b := ForProvider(ProviderMetadata{
		ID:           "acme",
		API:          itemsAPI(),
		Endpoint:     "https://default.acme.test",
		ISO3166Codes: []string{"US-CA", "US-VA"},
		Defaults:     map[string]string{properties.KeyMaxRedirects: "2"},
	}).
		Endpoint("https://x.acme.test").
		System(map[string]string{"acme.max-redirects": "3", "other.max-redirects": "9"}).
		Modules(LoggingModule(logger.NewNop()))

	c := build(t, b)
	s := c.Settings()
	assert.Equal(t, "https://x.acme.test", s.Endpoint)
	assert.Equal(t, "v1", s.APIVersion)
	assert.Equal(t, 3, s.MaxRedirects)
	assert.Equal(t, []string{"US-CA", "US-VA"}, s.ISO3166Codes)
	assert.Equal(t, "acme", s.Provider)
	assert.Equal(t, "items-api", s.API)
}

func TestBuild_LogsRedactedEndpoint(t *testing.T) {
	var buf bytes.Buffer
	build(t, newBuilder("https://api.acme.test/v1?token=s3cr3t").
		Modules(LoggingModule(logger.FromZerolog(zerolog.New(&buf), "apikit-test"))))

	out := buf.String()
	assert.Contains(t, out, "context built")
	assert.Contains(t, out, "api.acme.test")
	assert.NotContains(t, out, "s3cr3t")
}

func TestBuild_ContextName(t *testing.T) {
	a := build(t, newBuilder("https://api.acme.test"))
	b := build(t, newBuilder("https://api.acme.test"))
	other := build(t, newBuilder("https://other.acme.test"))
	named := build(t, newBuilder("https://api.acme.test").Name("mine"))

	assert.Equal(t, a.Name(), b.Name())
	assert.NotEqual(t, a.Name(), other.Name())
	assert.Equal(t, "mine", named.Name())
}

func TestInvoke_FiltersReadCredentialStore(t *testing.T) {
	srv := newItemServer(t, itemHandler)
	store := credentials.NewMemoryStore()
	api := itemsAPI()
	api.Anonymous = false
	c := build(t, NewBuilder(api).
		Name("store-test").
		Endpoint(srv.URL).
		Credentials("bob", "first").
		System(map[string]string{}).
		Modules(LoggingModule(logger.NewNop()), CredentialStoreModule(store), FiltersModule(rest.FilterBasicAuth)))

	_, err := c.Invoke(context.Background(), "getItem", rest.Args{"id": "42"})
	require.NoError(t, err)

	rotated := credentials.Credentials{Identity: "bob", Credential: "second"}
	require.NoError(t, store.Save(context.Background(), "store-test", &rotated, 0))
	_, err = c.Invoke(context.Background(), "getItem", rest.Args{"id": "42"})
	require.NoError(t, err)

	reqs := srv.recorded()
	require.Len(t, reqs, 2)
	first, _ := http.NewRequest(http.MethodGet, "/", nil)
	first.SetBasicAuth("bob", "first")
	second, _ := http.NewRequest(http.MethodGet, "/", nil)
	second.SetBasicAuth("bob", "second")
	assert.Equal(t, first.Header.Get("Authorization"), reqs[0].Header.Get("Authorization"))
	assert.Equal(t, second.Header.Get("Authorization"), reqs[1].Header.Get("Authorization"))
}

func TestInvoke_RetryRulesNeverRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newItemServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		itemHandler(w, r)
	})
	c := build(t, newBuilder(srv.URL).
		Property(properties.KeyMaxRetries, "2").
		Property(properties.KeyRetryDelayStart, "1").
		Modules(RetryModule(func(err error) bool { return apperrors.HasStatus(err, http.StatusTooManyRequests) })))

	_, err := c.Invoke(context.Background(), "getItemStrict", rest.Args{"id": "42"})
	require.Error(t, err, "4xx is never retried, whatever the rules say")
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvoke_RetryablehttpPolicy(t *testing.T) {
	flaky := func(calls *atomic.Int32) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInsufficientStorage)
				return
			}
			itemHandler(w, r)
		}
	}

	var plain atomic.Int32
	srv := newItemServer(t, flaky(&plain))
	c := build(t, newBuilder(srv.URL).
		Property(properties.KeyMaxRetries, "2").
		Property(properties.KeyRetryDelayStart, "1"))
	_, err := c.Invoke(context.Background(), "getItemStrict", rest.Args{"id": "42"})
	require.Error(t, err, "507 is not retried by the default policy")
	assert.Equal(t, int32(1), plain.Load())

	var policy atomic.Int32
	srv = newItemServer(t, flaky(&policy))
	c = build(t, newBuilder(srv.URL).
		Property(properties.KeyMaxRetries, "2").
		Property(properties.KeyRetryDelayStart, "1").
		Property(properties.KeyRetryPolicy, properties.RetryPolicyRetryablehttp))
	got, err := Call[item](context.Background(), c, "getItemStrict", rest.Args{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, int32(2), policy.Load())
}

func TestHealth(t *testing.T) {
	c := build(t, newBuilder("https://api.acme.test"))
	h := c.Health(context.Background())
	assert.Equal(t, observability.HealthStatusUp, h.Status)
	assert.Equal(t, c.Name(), h.Context)
	assert.Len(t, h.Components, 3)
}

func TestConvert(t *testing.T) {
	v, err := convert[[]item]("op", []any{map[string]any{"id": "1"}})
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}}, v)

	empty, err := convert[[]item]("op", []any{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = convert[item]("op", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsParse(err))
}

func TestInvoke_TLSProperties(t *testing.T) {
	srv, certs := tlstest.NewServer(t, http.HandlerFunc(itemHandler))

	untrusted := build(t, newBuilder(srv.URL))
	_, err := untrusted.Invoke(context.Background(), "getItemStrict", rest.Args{"id": "42"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err), "got %v", err)

	trusted := build(t, newBuilder(srv.URL).Property(properties.KeyCAFile, certs.CAFile))
	v, err := trusted.Invoke(context.Background(), "getItemStrict", rest.Args{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "answer", v.(map[string]any)["name"])
}
