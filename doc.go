// Package graphcache is a normalized GraphQL client cache with optimistic
// mutation support. Queries are answered from a local store when possible;
// misses are enqueued for the host to fetch; responses are normalized so
// that a mutation to one entity is reflected in every query that referenced
// it; mutations can be applied optimistically and later committed against
// the server's authoritative response or rolled back.
//
// The cache value is immutable: every operation below takes a Cache and
// returns a new one, the way always-cache's CacheProvider operations never
// mutate a stored entry in place. The zero value is not usable — construct
// one with New or NewWithConfig.
package graphcache
