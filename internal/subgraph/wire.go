package subgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Wire-level errors. ErrReadBody and ErrInvalidRequest classify failures of
// ParseHTTPRequest; ErrMalformedResponse marks an upstream body that is not a
// well-formed GraphQL response.
var (
	ErrReadBody          = errors.New("failed to read graphql request body")
	ErrInvalidRequest    = errors.New("invalid graphql request")
	ErrMalformedResponse = errors.New("malformed graphql response")
)

// wireRequest is the standard GraphQL-over-HTTP request shape.
type wireRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// MarshalWire serializes r to the GraphQL-over-HTTP JSON body
// {query, operationName?, variables?}. Entity representations, when present,
// are folded into the variables under the "representations" key, which is how
// federation _entities sub-queries travel.
func (r *Request) MarshalWire() ([]byte, error) {
	return json.Marshal(wireRequest{
		Query:         r.Query,
		OperationName: r.OperationName,
		Variables:     r.ExecutionVariables(),
	})
}

// DecodeResponse parses a GraphQL response body. A body that is not valid
// JSON, or that carries neither a "data" nor an "errors" key, fails with
// ErrMalformedResponse; retrying such a response cannot fix it.
func DecodeResponse(body []byte) (*Response, error) {
	var probe struct {
		Data   json.RawMessage `json:"data"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if probe.Data == nil && probe.Errors == nil {
		return nil, fmt.Errorf("%w: neither data nor errors present", ErrMalformedResponse)
	}

	res := &Response{}
	if probe.Data != nil && string(probe.Data) != "null" {
		if err := json.Unmarshal(probe.Data, &res.Data); err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrMalformedResponse, err)
		}
	}
	if probe.Errors != nil {
		if err := json.Unmarshal(probe.Errors, &res.Errors); err != nil {
			return nil, fmt.Errorf("%w: errors: %v", ErrMalformedResponse, err)
		}
	}
	return res, nil
}

// ParseHTTPRequest reads a plain HTTP request into a sub-query Request.
// The two failure kinds are distinguishable with errors.Is: a transport
// problem while reading the body (ErrReadBody) and a body that is not a
// GraphQL request (ErrInvalidRequest).
func ParseHTTPRequest(r *http.Request) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadBody, err)
	}
	var w wireRequest
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if w.Query == "" {
		return nil, fmt.Errorf("%w: missing 'query'", ErrInvalidRequest)
	}
	return &Request{
		Query:         w.Query,
		OperationName: w.OperationName,
		Variables:     w.Variables,
		Headers:       r.Header.Clone(),
	}, nil
}
