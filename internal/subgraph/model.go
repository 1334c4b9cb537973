package subgraph

import "net/http"

// Request is one sub-query produced by the planner for a single subgraph.
// It is owned by the call stack that created it and must not be mutated
// after construction.
type Request struct {
	// Query is the GraphQL operation document.
	Query string
	// OperationName selects the operation when the document has several.
	OperationName string
	// Variables are the operation's variable values.
	Variables map[string]any
	// Representations carries entity-key references for federation
	// _entities lookups. When present it is sent as the "representations"
	// variable on the wire.
	Representations []map[string]any
	// Headers are the originating request headers; the remote fetcher
	// forwards them minus the hop-by-hop set. Ignored by local execution.
	Headers http.Header
}

// ExecutionVariables returns the variables to execute with: Variables plus,
// when entity representations are present, the "representations" variable.
// The receiver's map is returned as-is when no folding is needed.
func (r *Request) ExecutionVariables() map[string]any {
	if len(r.Representations) == 0 {
		return r.Variables
	}
	vars := make(map[string]any, len(r.Variables)+1)
	for k, v := range r.Variables {
		vars[k] = v
	}
	reps := make([]any, len(r.Representations))
	for i, rep := range r.Representations {
		reps[i] = rep
	}
	vars["representations"] = reps
	return vars
}

// Error is one structured GraphQL error in a sub-query response.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e Error) Error() string { return e.Message }

// Response is the result of executing one sub-query. Data and Errors may
// coexist on partial success; on failure Data is nil and Errors is non-empty.
type Response struct {
	Data   map[string]any `json:"data"`
	Errors []Error        `json:"errors,omitempty"`
}

// ErrorResponse builds a data-less response from errs.
func ErrorResponse(errs ...Error) *Response {
	return &Response{Errors: errs}
}
