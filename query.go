package graphcache

import (
	"time"

	"github.com/always-cache/graphcache/pkg/denormalize"
	"github.com/always-cache/graphcache/pkg/entitykey"
	"github.com/always-cache/graphcache/pkg/jsonvalue"
	"github.com/always-cache/graphcache/pkg/merge"
	"github.com/always-cache/graphcache/pkg/normalize"
)

// QueryResultStatus tags a QueryResult.
type QueryResultStatus string

const (
	ResultLoading QueryResultStatus = "loading"
	ResultFailed  QueryResultStatus = "failed"
	ResultData    QueryResultStatus = "data"
)

// QueryResult is what Lookup hands back to a view: either the query is
// still in flight, parsing it failed, or here is the data.
type QueryResult[T any] struct {
	Status QueryResultStatus
	Data   T
	Failed string
}

// Parser turns a denormalized query response body into a typed value, or
// reports why it couldn't.
type Parser[T any] func(body string) (T, error)

// RawResult is the untyped counterpart to QueryResult, used by LookupAll
// where a batch of queries may each need a different T.
type RawResult struct {
	Name   string
	Status QueryResultStatus
	Body   string
	Failed string
}

// LookupRequest names a query LookupAll should resolve.
type LookupRequest struct {
	Name      string
	Variables any
}

// Lookup answers a single query. A cache miss enqueues the query key into
// the pending-fetch set and returns Loading; an entry mid-fetch also
// returns Loading; a Fresh or Stale entry is denormalized against the
// overlay-then-base store and handed to parser.
func Lookup[T any](c Cache, name string, variables any, parser Parser[T]) (Cache, QueryResult[T]) {
	nc, raw := lookupRaw(c, name, variables)
	switch raw.Status {
	case ResultLoading:
		return nc, QueryResult[T]{Status: ResultLoading}
	case ResultFailed:
		return nc, QueryResult[T]{Status: ResultFailed, Failed: raw.Failed}
	default:
		data, err := parser(raw.Body)
		if err != nil {
			return nc, QueryResult[T]{Status: ResultFailed, Failed: "Parse error: " + err.Error()}
		}
		return nc, QueryResult[T]{Status: ResultData, Data: data}
	}
}

// LookupAll resolves a batch of queries in one pass, enqueuing every miss
// before returning, so a single ProcessPending call afterwards drains the
// whole render pass's fetches at once instead of one round trip per query.
func LookupAll(c Cache, reqs []LookupRequest) (Cache, []RawResult) {
	results := make([]RawResult, 0, len(reqs))
	for _, req := range reqs {
		var raw RawResult
		c, raw = lookupRaw(c, req.Name, req.Variables)
		results = append(results, raw)
	}
	return c, results
}

func lookupRaw(c Cache, name string, variables any) (Cache, RawResult) {
	key, err := entitykey.Query(name, variables)
	if err != nil {
		return c, RawResult{Name: name, Status: ResultFailed, Failed: err.Error()}
	}
	log := c.log.With().Str("key", key).Logger()

	entry, ok := c.queries[key]
	if !ok {
		nc := c
		nc.pendingFetches = copyPending(c.pendingFetches)
		nc.pendingFetches[key] = struct{}{}
		log.Trace().Msg("cache miss, enqueuing fetch")
		return nc, RawResult{Name: name, Status: ResultLoading}
	}
	if entry.status == StatusLoading {
		return c, RawResult{Name: name, Status: ResultLoading}
	}
	if !entry.parsed {
		return c, RawResult{Name: name, Status: ResultData, Body: entry.rawBody}
	}

	resolved := denormalize.Resolve(entry.skeleton, c.optimisticEntities, c.entities)
	body, err := jsonvalue.Encode(resolved)
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize denormalized result")
		return c, RawResult{Name: name, Status: ResultFailed, Failed: "Parse error: " + err.Error()}
	}
	return c, RawResult{Name: name, Status: ResultData, Body: string(body)}
}

// StoreQuery records the result of a successful (or failed) fetch for
// name/variables. A body that parses as JSON is normalized: its entities
// are merged into the base entity table and its skeleton is stored as a
// Fresh entry. A body that fails to parse is stored verbatim as Fresh so a
// later Lookup can still surface a Failed result via its own parser.
func StoreQuery(c Cache, name string, variables any, body string, timestamp time.Time) Cache {
	key, err := entitykey.Query(name, variables)
	if err != nil {
		c.log.Warn().Err(err).Str("name", name).Msg("could not derive query key, dropping response")
		return c
	}
	log := c.log.With().Str("key", key).Logger()

	nc := c
	nc.queries = copyQueries(c.queries)
	nc.pendingFetches = copyPending(c.pendingFetches)
	delete(nc.pendingFetches, key)

	tree, err := jsonvalue.Decode([]byte(body))
	if err != nil {
		log.Warn().Err(err).Msg("response body failed to parse, storing raw")
		nc.queries[key] = queryEntry{rawBody: body, timestamp: timestamp, status: StatusFresh}
		return nc
	}

	extraction := normalize.Extract(tree)
	nc.entities = merge.Tables(c.entities, extraction.Entities)
	nc.queries[key] = queryEntry{skeleton: extraction.Skeleton, parsed: true, timestamp: timestamp, status: StatusFresh}
	log.Trace().Int("entities", len(extraction.Entities)).Msg("stored query")
	return nc
}

// MarkLoading transitions a query entry to Loading, creating it if absent.
func MarkLoading(c Cache, name string, variables any) Cache {
	key, err := entitykey.Query(name, variables)
	if err != nil {
		c.log.Warn().Err(err).Str("name", name).Msg("could not derive query key")
		return c
	}
	nc := c
	nc.queries = copyQueries(c.queries)
	nc.queries[key] = queryEntry{status: StatusLoading, timestamp: c.clock()}
	return nc
}

// MarkStale transitions a Fresh query entry to Stale. Entries that are
// absent or already Loading/Stale are left unchanged.
func MarkStale(c Cache, name string, variables any) Cache {
	key, err := entitykey.Query(name, variables)
	if err != nil {
		return c
	}
	entry, ok := c.queries[key]
	if !ok || entry.status != StatusFresh {
		return c
	}
	entry.status = StatusStale
	nc := c
	nc.queries = copyQueries(c.queries)
	nc.queries[key] = entry
	return nc
}

// Invalidate removes a query entry, the way a later Lookup of the same
// (name, variables) will enqueue a fresh fetch from scratch.
func Invalidate(c Cache, name string, variables any) Cache {
	key, err := entitykey.Query(name, variables)
	if err != nil {
		return c
	}
	nc := c
	nc.queries = copyQueries(c.queries)
	delete(nc.queries, key)
	return nc
}

// Clear resets the entire cache: every entity, overlay entry, pending
// mutation, query entry, and pending fetch is dropped.
func Clear(c Cache) Cache {
	nc := c
	nc.entities = map[string]map[string]any{}
	nc.optimisticEntities = map[string]map[string]any{}
	nc.optimisticMutations = map[string]string{}
	nc.queries = map[string]queryEntry{}
	nc.pendingFetches = map[string]struct{}{}
	return nc
}
