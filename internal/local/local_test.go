package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	executor "github.com/hanpama/subrouter/internal/executor"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSDL = `
	type Query {
		me: User
		user(id: ID!): User
	}
	type User { id: ID! username: String }
`

func userResolvers() executor.Runtime {
	return executor.NewResolvers().
		Field("Query", "me", func(ctx context.Context, source any, args map[string]any) (any, error) {
			return map[string]any{"id": "1234", "username": "Me"}, nil
		}).
		Field("Query", "user", func(ctx context.Context, source any, args map[string]any) (any, error) {
			id := args["id"].(string)
			return map[string]any{"id": id, "username": "User " + id}, nil
		})
}

func TestExecute(t *testing.T) {
	g := New("USER", SDLBuilder(userSDL, userResolvers()))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id username } }`})
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{"me": map[string]any{"id": "1234", "username": "Me"}}, res.Data)
}

func TestExecuteBuilderFailure(t *testing.T) {
	g := New("USER", SDLBuilder(`type Query { broken `, userResolvers()))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id } }`})
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "schema build failed")
}

func TestExecuteBuilderErrorType(t *testing.T) {
	boom := errors.New("resolver wiring incomplete")
	g := New("USER", BuilderFunc(func() (*Instance, error) { return nil, boom }))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id } }`})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "resolver wiring incomplete")
	assert.Contains(t, res.Errors[0].Message, "USER")
}

func TestExecuteInvalidQuery(t *testing.T) {
	g := New("USER", SDLBuilder(userSDL, userResolvers()))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ nonexistent }`})
	assert.Nil(t, res.Data)
	require.NotEmpty(t, res.Errors)
}

func TestExecuteResolverErrorIsPerField(t *testing.T) {
	rt := executor.NewResolvers().
		Field("Query", "me", func(ctx context.Context, source any, args map[string]any) (any, error) {
			return map[string]any{"id": "1"}, nil
		}).
		Field("User", "username", func(ctx context.Context, source any, args map[string]any) (any, error) {
			return nil, errors.New("username store offline")
		})
	g := New("USER", SDLBuilder(userSDL, rt))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id username } }`})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []any{"me", "username"}, res.Errors[0].Path)
	// Partial success: data and errors coexist
	require.NotNil(t, res.Data)
	assert.Equal(t, "1", res.Data["me"].(map[string]any)["id"])
}

func TestExecuteRecoversPanic(t *testing.T) {
	rt := executor.NewResolvers().
		Field("Query", "me", func(ctx context.Context, source any, args map[string]any) (any, error) {
			panic("resolver exploded")
		})
	g := New("USER", SDLBuilder(userSDL, rt))

	res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id } }`})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "panic")
}

func TestExecuteEntityRepresentations(t *testing.T) {
	sdl := `
		scalar _Any
		union _Entity = User
		type Query { _entities(representations: [_Any!]!): [_Entity]! }
		type User { id: ID! username: String }
	`
	rt := executor.NewResolvers().
		Field("Query", "_entities", func(ctx context.Context, source any, args map[string]any) (any, error) {
			reps := args["representations"].([]any)
			out := make([]any, len(reps))
			for i, rep := range reps {
				m := rep.(map[string]any)
				out[i] = map[string]any{
					"__typename": "User",
					"id":         m["id"],
					"username":   fmt.Sprintf("User %v", m["id"]),
				}
			}
			return out, nil
		})
	g := New("USER", SDLBuilder(sdl, rt))

	res := g.Execute(context.Background(), &subgraph.Request{
		Query: `query ($representations: [_Any!]!) {
			_entities(representations: $representations) { ... on User { id username } }
		}`,
		Representations: []map[string]any{
			{"__typename": "User", "id": "9"},
		},
	})
	require.Empty(t, res.Errors)
	entities := res.Data["_entities"].([]any)
	require.Len(t, entities, 1)
	assert.Equal(t, "User 9", entities[0].(map[string]any)["username"])
}

// Concurrent executions must not observe each other's state: every call gets
// a freshly built schema instance.
func TestExecuteConcurrentIsolation(t *testing.T) {
	g := New("USER", SDLBuilder(userSDL, userResolvers()))

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", i)
			res := g.Execute(context.Background(), &subgraph.Request{
				Query:     `query ($id: ID!) { user(id: $id) { id username } }`,
				Variables: map[string]any{"id": id},
			})
			if len(res.Errors) > 0 {
				t.Errorf("worker %d: unexpected errors: %v", i, res.Errors)
				return
			}
			user := res.Data["user"].(map[string]any)
			if user["id"] != id || user["username"] != "User "+id {
				t.Errorf("worker %d observed foreign state: %v", i, user)
			}
		}(i)
	}
	wg.Wait()
}

func TestBuilderCalledPerRequest(t *testing.T) {
	var mu sync.Mutex
	builds := 0
	g := New("USER", BuilderFunc(func() (*Instance, error) {
		mu.Lock()
		builds++
		mu.Unlock()
		return SDLBuilder(userSDL, userResolvers()).Build()
	}))

	for i := 0; i < 3; i++ {
		res := g.Execute(context.Background(), &subgraph.Request{Query: `{ me { id } }`})
		require.Empty(t, res.Errors)
	}
	assert.Equal(t, 3, builds)
}
