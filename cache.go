package graphcache

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Status is the lifecycle state of a stored query entry.
type Status string

const (
	StatusLoading Status = "loading"
	StatusFresh   Status = "fresh"
	StatusStale   Status = "stale"
)

// queryEntry is the per-query-key row of the query table. When parsed is
// false, skeleton is nil and rawBody holds the response body verbatim —
// the case where the body failed to parse but a later lookup's parser
// might still make sense of it once the host has upgraded the parser, or
// might simply want to surface the parse failure.
type queryEntry struct {
	skeleton  any
	rawBody   string
	parsed    bool
	timestamp time.Time
	status    Status
}

// Config configures a new Cache.
type Config struct {
	// Endpoint is the GraphQL HTTP endpoint every fetch and mutation posts to.
	Endpoint string
	// HeaderProvider is invoked at effect-execution time, not at Cache
	// construction time, so that host-side credential changes (a refreshed
	// auth token, say) take effect without rebuilding the cache. A nil
	// provider sends no extra headers.
	HeaderProvider func() http.Header
	// Logger receives cache tracing. A new zerolog logger writing to a
	// console writer is used if nil.
	Logger *zerolog.Logger
	// Clock is used for stamping query entries and is overridable for
	// deterministic tests. Defaults to time.Now.
	Clock func() time.Time
	// Transport sends GraphQL requests to Endpoint. Defaults to an
	// http.Client-backed implementation that follows cookies the way a
	// browser fetch() with credentials: "include" would.
	Transport Transport
	// RequestIDFunc generates the default Transport's X-Request-Id header
	// value. Defaults to a ulid generator; override for deterministic
	// tests. Ignored if Transport is also set.
	RequestIDFunc func() string
}

// Cache is the normalized entity store, optimistic overlay, and query
// table. All fields are unexported; the value is manipulated exclusively
// through the package-level operations (Lookup, StoreQuery,
// ApplyOptimisticUpdate, ProcessPending, ...), each of which returns a new
// Cache rather than mutating the one it was given.
type Cache struct {
	endpoint       string
	headerProvider func() http.Header
	clock          func() time.Time
	transport      Transport
	log            zerolog.Logger

	entities            map[string]map[string]any
	optimisticEntities  map[string]map[string]any
	optimisticMutations map[string]string
	queries             map[string]queryEntry
	pendingFetches      map[string]struct{}
	mutationCounter     int
}

// New constructs a Cache that posts to endpoint with no extra headers.
func New(endpoint string) Cache {
	return NewWithConfig(Config{Endpoint: endpoint})
}

// NewWithHeaders constructs a Cache whose fetches and mutations carry the
// headers headerProvider produces at send time.
func NewWithHeaders(endpoint string, headerProvider func() http.Header) Cache {
	return NewWithConfig(Config{Endpoint: endpoint, HeaderProvider: headerProvider})
}

// NewWithConfig constructs a Cache from a fully specified Config.
func NewWithConfig(cfg Config) Cache {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("component", "graphcache").Logger()

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	headerProvider := cfg.HeaderProvider
	if headerProvider == nil {
		headerProvider = func() http.Header { return http.Header{} }
	}

	transport := cfg.Transport
	if transport == nil {
		transport = newHTTPTransport(cfg.RequestIDFunc)
	}

	return Cache{
		endpoint:            cfg.Endpoint,
		headerProvider:      headerProvider,
		clock:               clock,
		transport:           transport,
		log:                 logger,
		entities:            map[string]map[string]any{},
		optimisticEntities:  map[string]map[string]any{},
		optimisticMutations: map[string]string{},
		queries:             map[string]queryEntry{},
		pendingFetches:      map[string]struct{}{},
	}
}

func copyEntityTable(m map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyQueries(m map[string]queryEntry) map[string]queryEntry {
	out := make(map[string]queryEntry, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyMutations(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPending(m map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
