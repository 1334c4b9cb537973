package supergraph

import (
	"testing"

	subgraph "github.com/hanpama/subrouter/internal/subgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSDL = `
directive @join__graph(name: String!, url: String!) on ENUM_VALUE

enum join__Graph {
  PRODUCT @join__graph(name: "product", url: "http://products.internal:4001/graphql")
  REVIEW @join__graph(name: "review", url: "http://reviews.internal:4002/graphql")
  USER @join__graph(name: "user", url: "")
}

type Query {
  topProducts(first: Int): [Product]
}

type Product {
  upc: String!
  name: String
}
`

func TestParse(t *testing.T) {
	sg, err := Parse("fixture", fixtureSDL)
	require.NoError(t, err)

	assert.Equal(t, []subgraph.Name{"PRODUCT", "REVIEW", "USER"}, sg.Names())

	assert.True(t, sg.Has("PRODUCT"))
	assert.False(t, sg.Has("INVENTORY"))

	u, ok := sg.URL("REVIEW")
	require.True(t, ok)
	assert.Equal(t, "http://reviews.internal:4002/graphql", u)

	// Declared but with an empty url: no fallback available.
	_, ok = sg.URL("USER")
	assert.False(t, ok)

	_, ok = sg.URL("INVENTORY")
	assert.False(t, ok)
}

func TestParseNoGraphEnum(t *testing.T) {
	_, err := Parse("fixture", `type Query { ok: Boolean }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join__Graph")
}

func TestParseEmptyGraphEnum(t *testing.T) {
	// An enum must have at least one value to parse, so an effectively empty
	// roster can only come from a document without the enum at all; a syntax
	// error must surface as such.
	_, err := Parse("fixture", `enum join__Graph {}`)
	assert.Error(t, err)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("fixture", `enum join__Graph { PRODUCT `)
	assert.Error(t, err)
}
