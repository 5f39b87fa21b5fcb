// Package entitykey derives and reverses the two canonical key forms the
// cache is built around: query keys (name + canonicalized variables) and
// entity keys (typename + id). It plays the same role for the normalized
// cache that pkg/cache-key played for always-cache's HTTP response cache —
// a single place that knows how to build a key and how to undo that, given
// only the key string.
package entitykey

import (
	"fmt"
	"strings"

	"github.com/always-cache/graphcache/pkg/jsonvalue"
)

const separator = ":"

// Query returns the canonical cache key for a query or mutation name and its
// variables: name + ":" + canonical_json(variables). name must not contain
// ":" — ReverseQuery splits on the first occurrence only.
func Query(name string, variables any) (string, error) {
	if strings.Contains(name, separator) {
		return "", fmt.Errorf("entitykey: query name %q must not contain %q", name, separator)
	}
	canonical, err := jsonvalue.Canonical(variables)
	if err != nil {
		return "", fmt.Errorf("entitykey: canonicalizing variables for %q: %w", name, err)
	}
	return name + separator + canonical, nil
}

// ReverseQuery splits a query key back into its name and the raw canonical
// JSON text of its variables. It is the inverse of Query, splitting on the
// first separator as required by that asymmetry.
func ReverseQuery(key string) (name, variablesJSON string, ok bool) {
	return strings.Cut(key, separator)
}

// Entity returns the entity key for a typename and id: typename + ":" + id.
// typename must not contain ":".
func Entity(typename, id string) string {
	return typename + separator + id
}
