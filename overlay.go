package graphcache

import (
	"github.com/always-cache/graphcache/pkg/jsonvalue"
	"github.com/always-cache/graphcache/pkg/merge"
	"github.com/always-cache/graphcache/pkg/normalize"
)

// Updater computes the provisional entity a mutation should be seen to
// produce. It receives the currently visible value for the entity (overlay
// first, then base) and whether one exists at all, and must return the full
// replacement object.
type Updater func(current map[string]any, ok bool) map[string]any

// ApplyOptimisticUpdate writes updater's result into the optimistic overlay
// under entityKey and records mutationID as owning that key. If another
// mutation already owns entityKey in the overlay, this one overwrites it —
// both mutation ids remain in optimisticMutations, and rolling back the
// second does not restore the first (see CommitOptimistic/RollbackOptimistic);
// callers that care must serialize conflicting mutations. The overwrite is
// logged, not prevented.
func ApplyOptimisticUpdate(c Cache, mutationID, entityKey string, updater Updater) Cache {
	current, ok := visibleEntity(c, entityKey)
	updated := updater(current, ok)

	nc := c
	nc.optimisticEntities = copyEntityTable(c.optimisticEntities)
	if owner, conflict := mutationOwning(c.optimisticMutations, entityKey); conflict && owner != mutationID {
		nc.log.Warn().
			Str("entity_key", entityKey).
			Str("mutation_id", mutationID).
			Str("previous_mutation_id", owner).
			Msg("optimistic update overwrites another pending mutation's overlay entry")
	}
	nc.optimisticEntities[entityKey] = updated

	nc.optimisticMutations = copyMutations(c.optimisticMutations)
	nc.optimisticMutations[mutationID] = entityKey
	return nc
}

// visibleEntity returns the value a caller of ApplyOptimisticUpdate would
// see for entityKey right now: overlay first, then base, then absent.
func visibleEntity(c Cache, entityKey string) (map[string]any, bool) {
	if e, ok := c.optimisticEntities[entityKey]; ok {
		return e, true
	}
	if e, ok := c.entities[entityKey]; ok {
		return e, true
	}
	return nil, false
}

func mutationOwning(mutations map[string]string, entityKey string) (mutationID string, ok bool) {
	for id, key := range mutations {
		if key == entityKey {
			return id, true
		}
	}
	return "", false
}

// RollbackOptimistic discards the overlay entry for mutationID's entity key,
// so the base value for that key is visible again, and removes mutationID
// from the pending mutations. Unknown mutation ids are a no-op.
func RollbackOptimistic(c Cache, mutationID string) Cache {
	entityKey, ok := c.optimisticMutations[mutationID]
	if !ok {
		return c
	}
	nc := c
	nc.optimisticEntities = copyEntityTable(c.optimisticEntities)
	delete(nc.optimisticEntities, entityKey)
	nc.optimisticMutations = copyMutations(c.optimisticMutations)
	delete(nc.optimisticMutations, mutationID)
	return nc
}

// CommitOptimistic replaces mutationID's prediction with the server's
// authoritative answer: responseBody is normalized and merged into the
// base entity table, and the overlay/mutation bookkeeping for mutationID is
// cleared regardless of whether responseBody parsed — the cache state it
// was predicting has already been superseded by the real response that
// flowed through StoreQuery earlier in the same update cycle.
func CommitOptimistic(c Cache, mutationID, responseBody string) Cache {
	entityKey, known := c.optimisticMutations[mutationID]

	nc := c
	if known {
		nc.optimisticEntities = copyEntityTable(c.optimisticEntities)
		delete(nc.optimisticEntities, entityKey)
		nc.optimisticMutations = copyMutations(c.optimisticMutations)
		delete(nc.optimisticMutations, mutationID)
	}

	tree, err := jsonvalue.Decode([]byte(responseBody))
	if err != nil {
		nc.log.Warn().Err(err).Str("mutation_id", mutationID).Msg("commit response failed to parse, overlay cleared anyway")
		return nc
	}
	extraction := normalize.Extract(tree)
	nc.entities = merge.Tables(nc.entities, extraction.Entities)
	return nc
}

// HasPendingMutations reports whether any optimistic mutation is still
// awaiting commit or rollback.
func HasPendingMutations(c Cache) bool {
	return len(c.optimisticMutations) > 0
}
