// Package normalize walks a parsed GraphQL response and pulls every entity
// — any object carrying a string id — out into a flat table, leaving behind
// a skeleton tree of reference placeholders in its place. It is the cache's
// analogue of always-cache's response-serializer: both turn one shot of
// wire data into a stable, replayable representation, just at different
// granularities (a whole HTTP response there, individual entities here).
package normalize

import (
	"strings"

	"github.com/always-cache/graphcache/pkg/entitykey"
	"github.com/always-cache/graphcache/pkg/jsonvalue"
	"github.com/always-cache/graphcache/pkg/merge"
	"github.com/cespare/xxhash/v2"
)

// reservedPathSegments are skipped when inferring a typename from the
// traversal path — they describe response shape, not domain vocabulary.
var reservedPathSegments = map[string]struct{}{
	"data":    {},
	"results": {},
	"edges":   {},
	"node":    {},
}

// Extraction is the result of Extract: every entity pulled out of the tree,
// keyed by its entity key, plus the skeleton the entities were replaced in.
type Extraction struct {
	Entities map[string]map[string]any
	Skeleton any
}

// Extract recursively walks tree, classifying each node (entity, plain
// object, connection-edge array, plain array, or scalar) per the rules in
// extractObject and extractArray, and returns the entity table plus the
// skeleton tree with every entity subtree replaced by {__ref: entityKey}.
func Extract(tree any) Extraction {
	entities := make(map[string]map[string]any)
	skeleton := extractNode(tree, nil, entities)
	return Extraction{Entities: entities, Skeleton: skeleton}
}

func extractNode(v any, path []string, entities map[string]map[string]any) any {
	switch node := v.(type) {
	case map[string]any:
		return extractObject(node, path, entities)
	case []any:
		return extractArray(node, path, entities)
	default:
		return v
	}
}

// extractObject classifies an object node. An object with a string id field
// is an entity: it is recursed into, merged with any same-key entity
// already emitted earlier in this traversal, stored in entities under its
// entity key, and replaced by a reference placeholder. An object without a
// usable id is recursed into field by field and no entity is emitted for it.
func extractObject(obj map[string]any, path []string, entities map[string]map[string]any) any {
	id, hasID := jsonvalue.StringField(obj, "id")
	normalized := make(map[string]any, len(obj))
	for field, value := range obj {
		normalized[field] = extractNode(value, joinPath(path, field), entities)
	}
	if !hasID {
		return normalized
	}
	key := entitykey.Entity(entityTypename(obj, path), id)
	if existing, ok := entities[key]; ok {
		normalized = merge.Entities(existing, normalized)
	}
	entities[key] = normalized
	return jsonvalue.Ref(key)
}

// extractArray classifies an array node. An array whose first element is an
// object with a node field is a connection-edges array and is deduplicated
// by node entity key (see extractEdges); any other array is mapped over
// element by element, preserving order.
func extractArray(arr []any, path []string, entities map[string]map[string]any) []any {
	if isConnectionEdges(arr) {
		return extractEdges(arr, path, entities)
	}
	out := make([]any, len(arr))
	for i, el := range arr {
		out[i] = extractNode(el, path, entities)
	}
	return out
}

func isConnectionEdges(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	first, ok := jsonvalue.Object(arr[0])
	if !ok {
		return false
	}
	_, hasNode := first["node"]
	return hasNode
}

// extractEdges normalizes a connection-edges array in source order,
// dropping any edge whose node entity key has already been seen. The first
// occurrence of a given node is authoritative for the response: a dropped
// edge's entities are not re-emitted. Edges whose node lacks a usable id
// pass through without dedup.
func extractEdges(arr []any, path []string, entities map[string]map[string]any) []any {
	seen := make(map[uint64]struct{}, len(arr))
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		if edge, ok := jsonvalue.Object(el); ok {
			if key, ok := edgeNodeKey(edge, path); ok {
				h := xxhash.Sum64String(key)
				if _, dup := seen[h]; dup {
					continue
				}
				seen[h] = struct{}{}
			}
		}
		out = append(out, extractNode(el, path, entities))
	}
	return out
}

func edgeNodeKey(edge map[string]any, path []string) (string, bool) {
	node, ok := jsonvalue.Object(edge["node"])
	if !ok {
		return "", false
	}
	id, ok := jsonvalue.StringField(node, "id")
	if !ok {
		return "", false
	}
	return entitykey.Entity(entityTypename(node, joinPath(path, "node")), id), true
}

// entityTypename returns __typename if present and a string, else falls
// back to inferTypename(path).
func entityTypename(obj map[string]any, path []string) string {
	if tn, ok := jsonvalue.StringField(obj, "__typename"); ok {
		return tn
	}
	return inferTypename(path)
}

// inferTypename scans path from deepest to shallowest, skipping reserved
// segments, and singularizes the first remaining segment. It returns
// "Entity" if no segment qualifies. This is a heuristic fallback for
// responses omitting __typename — callers should prefer selecting it.
func inferTypename(path []string) string {
	for i := len(path) - 1; i >= 0; i-- {
		seg := path[i]
		if _, reserved := reservedPathSegments[seg]; reserved {
			continue
		}
		if tn := singularize(seg); tn != "" {
			return tn
		}
	}
	return "Entity"
}

func singularize(segment string) string {
	segment = strings.TrimSuffix(segment, "s")
	if segment == "" {
		return ""
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}

// joinPath returns a new path with seg appended, never aliasing path's
// backing array — extractObject calls this once per field of the same
// object, and a shared backing array would let later fields overwrite
// earlier ones' path entries.
func joinPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}
