package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	retry "github.com/hanpama/subrouter/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
subgraphs:
  PRODUCT:
    mode: remote
    url: http://localhost:4001/graphql
  REVIEW:
    mode: remote
  USER:
    mode: local
retry:
  max_attempts: 5
  base_delay: 50ms
  multiplier: 1.5
  overall_timeout: 10s
`))
	require.NoError(t, err)

	assert.Equal(t, Subgraph{Mode: ModeRemote, URL: "http://localhost:4001/graphql"}, cfg.Subgraphs["PRODUCT"])
	assert.Equal(t, Subgraph{Mode: ModeRemote}, cfg.Subgraphs["REVIEW"])
	assert.Equal(t, Subgraph{Mode: ModeLocal}, cfg.Subgraphs["USER"])

	assert.Equal(t, retry.Policy{
		MaxAttempts:    5,
		BaseDelay:      50 * time.Millisecond,
		Multiplier:     1.5,
		OverallTimeout: 10 * time.Second,
	}, cfg.RetryPolicy())
}

func TestParseRetryDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
subgraphs:
  USER:
    mode: local
`))
	require.NoError(t, err)
	assert.Equal(t, retry.Default, cfg.RetryPolicy())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no subgraphs", `retry: {max_attempts: 3}`, "no subgraphs"},
		{"missing mode", "subgraphs:\n  USER: {}", "mode is required"},
		{"unknown mode", "subgraphs:\n  USER: {mode: grpc}", `unknown mode "grpc"`},
		{"local with url", "subgraphs:\n  USER: {mode: local, url: http://x}", "take no url"},
		{"bad duration", "subgraphs:\n  USER: {mode: local}\nretry: {base_delay: soon}", "invalid duration"},
		{"bad policy", "subgraphs:\n  USER: {mode: local}\nretry: {max_attempts: -1}", "max attempts"},
		{"not yaml", `{{`, "config:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subgraphs:\n  USER:\n    mode: local\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Subgraphs["USER"].Mode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
