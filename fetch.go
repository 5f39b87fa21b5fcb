package graphcache

import (
	"context"
	"fmt"

	"github.com/always-cache/graphcache/pkg/entitykey"
	"github.com/always-cache/graphcache/pkg/jsonvalue"
)

// Effect is a detached unit of work ProcessPending or
// ExecuteOptimisticMutation hands back to the host. Running it performs the
// actual network call and, on completion, invokes the callback it was built
// with. The cache itself never runs an Effect — it only ever produces them.
type Effect func(ctx context.Context)

// OnResponse is dispatched by a fetch Effect once its request completes (or
// fails). The host is expected to route it into StoreQuery — on whatever
// Cache value is current at dispatch time, per the no-ordering-guarantees
// concurrency model.
type OnResponse func(name string, variables any, body string, err error)

// ProcessPending drains the pending-fetch set into one Effect per key whose
// query name is registered; keys whose name is not registered are silently
// dropped (logged at Warn) rather than surfaced as an error — see
// SPEC_FULL.md's open-question resolution. Every remaining key transitions
// to Loading and pendingFetches is cleared before this returns.
func ProcessPending(c Cache, registry Registry, onResponse OnResponse) (Cache, []Effect) {
	nc := c
	nc.queries = copyQueries(c.queries)

	effects := make([]Effect, 0, len(c.pendingFetches))
	for key := range c.pendingFetches {
		name, variablesJSON, _ := entitykey.ReverseQuery(key)
		log := nc.log.With().Str("key", key).Str("name", name).Logger()

		queryText, err := registry.Get(name)
		if err != nil {
			log.Warn().Err(err).Msg("query not registered, dropping pending fetch")
			continue
		}

		var variables any
		if variablesJSON != "" {
			if v, derr := jsonvalue.Decode([]byte(variablesJSON)); derr == nil {
				variables = v
			} else {
				log.Warn().Err(derr).Msg("could not decode variables from query key")
			}
		}

		entry := nc.queries[key]
		entry.status = StatusLoading
		nc.queries[key] = entry

		effects = append(effects, fetchEffect(nc, queryText.Query, name, variables, onResponse))
	}
	nc.pendingFetches = map[string]struct{}{}
	return nc, effects
}

func fetchEffect(c Cache, query, name string, variables any, onResponse OnResponse) Effect {
	return func(ctx context.Context) {
		body, err := c.transport.Send(ctx, c.endpoint, query, variables, c.headerProvider())
		onResponse(name, variables, body, err)
	}
}

// MutationOnResponse is dispatched by an optimistic mutation's Effect once
// its request completes. data is the parser's result and err, if non-nil,
// covers both a transport failure and a parse failure on an otherwise
// successful response. On a transport failure data is the zero value and
// rawBody is whatever the Transport returned with its error: empty for a
// network failure or an empty body, the origin's response body for a
// non-2xx status.
type MutationOnResponse[T any] func(mutationID string, data T, rawBody string, err error)

// ExecuteOptimisticMutation allocates a mutation id, applies updater to
// entityKey's overlay immediately via ApplyOptimisticUpdate, and returns an
// Effect that sends the mutation and reports the parsed result. The host is
// expected to call CommitOptimistic on success or RollbackOptimistic on
// failure, carrying mutationID and (on success) the raw response body.
func ExecuteOptimisticMutation[T any](
	c Cache,
	registry Registry,
	name string,
	variables any,
	entityKey string,
	updater Updater,
	parser Parser[T],
	onResponse MutationOnResponse[T],
) (Cache, string, Effect, error) {
	queryText, err := registry.Get(name)
	if err != nil {
		return c, "", nil, fmt.Errorf("graphcache: mutation %q not registered: %w", name, err)
	}

	mutationID := fmt.Sprintf("mutation-%d", c.mutationCounter)
	nc := c
	nc.mutationCounter = c.mutationCounter + 1
	nc = ApplyOptimisticUpdate(nc, mutationID, entityKey, updater)

	effect := func(ctx context.Context) {
		body, sendErr := nc.transport.Send(ctx, nc.endpoint, queryText.Query, variables, nc.headerProvider())
		if sendErr != nil {
			var zero T
			onResponse(mutationID, zero, body, sendErr)
			return
		}
		data, parseErr := parser(body)
		onResponse(mutationID, data, body, parseErr)
	}
	return nc, mutationID, effect, nil
}
