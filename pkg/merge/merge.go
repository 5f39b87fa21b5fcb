// Package merge implements the cache's one combining rule: when the same
// entity, or the same entity table, is seen twice, the newer value wins
// field by field. This mirrors always-cache's rule for updating a stored
// response's header fields from a newer one (RFC 9111 §3.2) — add every
// field from the new value, replacing what's already there — except here
// the fields are GraphQL entity attributes rather than HTTP headers, and
// there are no excepted fields: the normalizer has already pulled any
// nested entity out by reference before merge ever sees it.
package merge

import "github.com/always-cache/graphcache/pkg/jsonvalue"

// Entities combines two versions of the same entity. The result has the
// union of both sets of fields; for fields present in both, incoming wins.
// Fields are not deep-merged — incoming's value for a field replaces
// existing's value for that field entirely.
func Entities(existing, incoming map[string]any) map[string]any {
	merged := jsonvalue.CloneObject(existing)
	for field, value := range incoming {
		merged[field] = value
	}
	return merged
}

// Tables merges an incoming entity table into base, entity key by entity
// key, using Entities for any key present in both.
func Tables(base, incoming map[string]map[string]any) map[string]map[string]any {
	merged := make(map[string]map[string]any, len(base)+len(incoming))
	for key, entity := range base {
		merged[key] = entity
	}
	for key, entity := range incoming {
		if existing, ok := merged[key]; ok {
			merged[key] = Entities(existing, entity)
		} else {
			merged[key] = entity
		}
	}
	return merged
}
