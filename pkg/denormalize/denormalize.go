// Package denormalize is the inverse of normalize: it walks a skeleton tree
// and substitutes each reference placeholder with the entity it points to,
// looked up in the optimistic overlay first and the base table second. This
// plays the role always-cache's createStoredResponse plays for a single
// cached HTTP response — reconstituting something servable from what was
// actually stored — but recursively, since an entity's own fields may
// themselves contain references.
package denormalize

import "github.com/always-cache/graphcache/pkg/jsonvalue"

// Resolve denormalizes skeleton against overlay and base, overlay taking
// precedence. Every reference that resolves is replaced, recursively, by
// the (denormalized) entity it names. A reference that resolves to nothing
// in either table is passed through unchanged, and a reference revisited
// while already being resolved on the current path — a cycle — is also
// passed through unchanged rather than recursed into again.
func Resolve(skeleton any, overlay, base map[string]map[string]any) any {
	return resolve(skeleton, overlay, base, nil)
}

func resolve(v any, overlay, base map[string]map[string]any, visiting map[string]struct{}) any {
	obj, isObject := jsonvalue.Object(v)
	if isObject {
		if key, isRef := jsonvalue.RefKey(obj); isRef {
			return resolveRef(key, overlay, base, visiting)
		}
		out := make(map[string]any, len(obj))
		for field, value := range obj {
			out[field] = resolve(value, overlay, base, visiting)
		}
		return out
	}
	if arr, isArray := jsonvalue.Array(v); isArray {
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = resolve(el, overlay, base, visiting)
		}
		return out
	}
	return v
}

func resolveRef(key string, overlay, base map[string]map[string]any, visiting map[string]struct{}) any {
	if _, onPath := visiting[key]; onPath {
		return jsonvalue.Ref(key)
	}
	entity, ok := overlay[key]
	if !ok {
		entity, ok = base[key]
	}
	if !ok {
		return jsonvalue.Ref(key)
	}
	nextVisiting := make(map[string]struct{}, len(visiting)+1)
	for k := range visiting {
		nextVisiting[k] = struct{}{}
	}
	nextVisiting[key] = struct{}{}
	return resolve(entity, overlay, base, nextVisiting)
}
