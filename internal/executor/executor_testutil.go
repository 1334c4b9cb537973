package executor

import (
	"testing"

	language "github.com/hanpama/subrouter/internal/language"
)

// mustSchema compiles SDL and fails the test on error.
func mustSchema(t *testing.T, sdl string) *language.Schema {
	t.Helper()
	sch, err := language.LoadSchema("test", sdl)
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return sch
}

// mustParseQuery parses a GraphQL query without validation and fails the
// test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}
