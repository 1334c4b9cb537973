package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is the located GraphQL error produced by the parser and validator.
type Error = gqlerror.Error

// ErrorList is a list of located GraphQL errors.
type ErrorList = gqlerror.List

// ParseQuery parses a GraphQL executable document without validating it
// against a schema.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchema parses a schema document without validation. Supergraph SDL is
// read this way since its federation directives carry no executable semantics.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates a schema document into the compiled form
// the executor runs against.
func LoadSchema(name, source string) (*Schema, error) {
	return gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
}

// LoadQuery parses and validates an executable document against sch.
func LoadQuery(sch *Schema, source string) (*QueryDocument, ErrorList) {
	return gqlparser.LoadQuery(sch, source)
}
