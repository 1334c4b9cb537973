// Package dispatch turns startup configuration into the subgraph registry
// the planner dispatches against. Each configured name resolves to exactly
// one of the two variants, local or remote, once at load time; there is no
// per-request strategy decision.
package dispatch

import (
	"fmt"
	"sort"

	config "github.com/hanpama/subrouter/internal/config"
	local "github.com/hanpama/subrouter/internal/local"
	remote "github.com/hanpama/subrouter/internal/remote"
	subgraph "github.com/hanpama/subrouter/internal/subgraph"
	supergraph "github.com/hanpama/subrouter/internal/supergraph"
)

// Build constructs the registry from cfg against the supergraph's declared
// roster. builders supplies the schema builder for each local subgraph.
// remoteOpts apply to every remote fetcher. All errors here are startup
// errors and must be reported before serving begins.
func Build(
	cfg *config.Config,
	sg *supergraph.Supergraph,
	builders map[subgraph.Name]local.Builder,
	remoteOpts ...remote.Option,
) (*subgraph.Registry, error) {
	policy := cfg.RetryPolicy()
	reg := subgraph.NewRegistry(sg.Names())

	names := make([]string, 0, len(cfg.Subgraphs))
	for name := range cfg.Subgraphs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sc := cfg.Subgraphs[name]
		n := subgraph.Name(name)

		var g subgraph.Subgraph
		switch sc.Mode {
		case config.ModeLocal:
			b, ok := builders[n]
			if !ok {
				return nil, fmt.Errorf("dispatch: local subgraph %s has no schema builder", n)
			}
			g = local.New(n, b)

		case config.ModeRemote:
			endpoint := sc.URL
			if endpoint == "" {
				declared, ok := sg.URL(n)
				if !ok {
					return nil, fmt.Errorf("dispatch: remote subgraph %s has no url override and the supergraph declares none", n)
				}
				endpoint = declared
			}
			rg, err := remote.New(n, endpoint, policy, remoteOpts...)
			if err != nil {
				return nil, fmt.Errorf("dispatch: %w", err)
			}
			g = rg

		default:
			return nil, fmt.Errorf("dispatch: subgraph %s: unknown mode %q", n, sc.Mode)
		}

		if err := reg.Add(g); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
	}
	return reg, nil
}
