package executor

// Path locates a field in the response tree: strings for field names,
// ints for list indices.
type Path []PathElement

type PathElement = any

// GraphQLError is an error recorded during execution, located by Path.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult is the outcome of executing one operation. Data may be
// partially populated alongside Errors.
type ExecutionResult struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
