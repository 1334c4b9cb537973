// Package supergraph reads the federated supergraph SDL just far enough to
// learn which subgraphs exist and what routing URL the composition embedded
// for each: the join__Graph enum and its @join__graph(name, url) directives.
// The rest of the document (composition directives, type ownership) belongs
// to the external planner and is not interpreted here.
package supergraph

import (
	"fmt"

	language "github.com/hanpama/subrouter/internal/language"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
)

const (
	graphEnumName       = "join__Graph"
	graphDirectiveName  = "join__graph"
	graphDirectiveURL   = "url"
	graphDirectiveLabel = "name"
)

// Supergraph is the subgraph roster declared by one supergraph schema.
type Supergraph struct {
	names []subgraph.Name
	urls  map[subgraph.Name]string
}

// Parse extracts the roster from supergraph SDL. The document is parsed
// without validation; a missing or empty join__Graph enum is an error since
// a supergraph without subgraphs cannot route anything.
func Parse(name, sdl string) (*Supergraph, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("supergraph: %w", err)
	}

	var enum *language.Definition
	for _, def := range doc.Definitions {
		if def.Kind == language.Enum && def.Name == graphEnumName {
			enum = def
			break
		}
	}
	if enum == nil || len(enum.EnumValues) == 0 {
		return nil, fmt.Errorf("supergraph: schema declares no %s enum", graphEnumName)
	}

	sg := &Supergraph{urls: make(map[subgraph.Name]string, len(enum.EnumValues))}
	for _, ev := range enum.EnumValues {
		n := subgraph.Name(ev.Name)
		sg.names = append(sg.names, n)
		if d := ev.Directives.ForName(graphDirectiveName); d != nil {
			if arg := d.Arguments.ForName(graphDirectiveURL); arg != nil {
				sg.urls[n] = arg.Value.Raw
			}
		}
	}
	return sg, nil
}

// Names lists the declared subgraphs in declaration order.
func (s *Supergraph) Names() []subgraph.Name {
	out := make([]subgraph.Name, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether name is declared.
func (s *Supergraph) Has(name subgraph.Name) bool {
	_, ok := s.urls[name]
	if ok {
		return true
	}
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// URL returns the routing URL the schema embeds for name, if any. It is the
// fallback when configuration supplies no override.
func (s *Supergraph) URL(name subgraph.Name) (string, bool) {
	u, ok := s.urls[name]
	return u, ok && u != ""
}
