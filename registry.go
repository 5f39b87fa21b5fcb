package graphcache

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QueryText is what a Registry returns for a query or mutation name.
type QueryText struct {
	Query string
}

// Registry maps query/mutation names to their GraphQL query text. The cache
// never stores query text itself — ProcessPending and
// ExecuteOptimisticMutation consult a Registry for it.
type Registry interface {
	Get(name string) (QueryText, error)
}

// MapRegistry is the simplest Registry: a static name-to-query-text map,
// the in-memory counterpart to always-cache's MemCache test double.
type MapRegistry map[string]QueryText

// Get implements Registry.
func (m MapRegistry) Get(name string) (QueryText, error) {
	qt, ok := m[name]
	if !ok {
		return QueryText{}, fmt.Errorf("%w: %s", ErrQueryNotRegistered, name)
	}
	return qt, nil
}

// registryDocument is the shape RegistryFromYAML expects on disk:
//
//	queries:
//	  GetSettings: "query GetSettings { settings { id domainAuthority } }"
//	  UpdateDomainAuthority: "mutation UpdateDomainAuthority($id: ID!) { ... }"
type registryDocument struct {
	Queries map[string]string `yaml:"queries"`
}

// RegistryFromYAML loads a MapRegistry from a YAML file, mirroring
// always-cache's config.go loading its rule set from YAML via
// gopkg.in/yaml.v3. This is example/host wiring, not part of the core's
// required Registry contract.
func RegistryFromYAML(path string) (Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphcache: reading registry file: %w", err)
	}
	var doc registryDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("graphcache: parsing registry file: %w", err)
	}
	reg := make(MapRegistry, len(doc.Queries))
	for name, query := range doc.Queries {
		reg[name] = QueryText{Query: query}
	}
	return reg, nil
}
