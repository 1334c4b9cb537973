package dispatch

import (
	"context"
	"testing"
	"time"

	config "github.com/hanpama/subrouter/internal/config"
	executor "github.com/hanpama/subrouter/internal/executor"
	local "github.com/hanpama/subrouter/internal/local"
	remote "github.com/hanpama/subrouter/internal/remote"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
	supergraph "github.com/hanpama/subrouter/internal/supergraph"
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

type Query { ok: Boolean }
`

func fixtureSupergraph(t *testing.T) *supergraph.Supergraph {
	t.Helper()
	sg, err := supergraph.Parse("fixture", fixtureSDL)
	require.NoError(t, err)
	return sg
}

func userBuilder() local.Builder {
	rt := executor.NewResolvers().
		Field("Query", "me", func(ctx context.Context, source any, args map[string]any) (any, error) {
			return map[string]any{"id": "1"}, nil
		})
	return local.SDLBuilder(`type Query { me: User } type User { id: ID! }`, rt)
}

func TestBuild(t *testing.T) {
	cfg := &config.Config{
		Subgraphs: map[string]config.Subgraph{
			"PRODUCT": {Mode: config.ModeRemote, URL: "http://localhost:4001/graphql"},
			"REVIEW":  {Mode: config.ModeRemote},
			"USER":    {Mode: config.ModeLocal},
		},
	}
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(time.Millisecond)
	cfg.Retry.Multiplier = 2

	reg, err := Build(cfg, fixtureSupergraph(t), map[subgraph.Name]local.Builder{
		"USER": userBuilder(),
	})
	require.NoError(t, err)
	assert.Equal(t, []subgraph.Name{"PRODUCT", "REVIEW", "USER"}, reg.Names())

	// The configured url wins over the schema-declared one.
	product, ok := reg.Get("PRODUCT")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:4001/graphql", product.(*remote.Graph).URL())

	// Without an override the schema-declared url is used.
	review, ok := reg.Get("REVIEW")
	require.True(t, ok)
	assert.Equal(t, "http://reviews.internal:4002/graphql", review.(*remote.Graph).URL())

	user, ok := reg.Get("USER")
	require.True(t, ok)
	_, isLocal := user.(*local.Graph)
	assert.True(t, isLocal)
}

func TestBuildLocalWithoutBuilder(t *testing.T) {
	cfg := &config.Config{
		Subgraphs: map[string]config.Subgraph{"USER": {Mode: config.ModeLocal}},
	}
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(time.Millisecond)
	cfg.Retry.Multiplier = 2

	_, err := Build(cfg, fixtureSupergraph(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema builder")
}

func TestBuildRemoteWithoutURL(t *testing.T) {
	// USER has an empty url in the schema, so a remote USER needs an override.
	cfg := &config.Config{
		Subgraphs: map[string]config.Subgraph{"USER": {Mode: config.ModeRemote}},
	}
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(time.Millisecond)
	cfg.Retry.Multiplier = 2

	_, err := Build(cfg, fixtureSupergraph(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares none")
}

func TestBuildUndeclaredSubgraph(t *testing.T) {
	cfg := &config.Config{
		Subgraphs: map[string]config.Subgraph{
			"INVENTORY": {Mode: config.ModeRemote, URL: "http://localhost:4005/graphql"},
		},
	}
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(time.Millisecond)
	cfg.Retry.Multiplier = 2

	_, err := Build(cfg, fixtureSupergraph(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVENTORY")
}
