package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/hanpama/subrouter/internal/language"
)

// Executor runs GraphQL operations against a validated schema, delegating
// field resolution to a Runtime. Execution is synchronous and depth-first;
// an Executor carries no per-operation state and may be shared.
type Executor struct {
	runtime Runtime
	schema  *language.Schema
}

func New(schema *language.Schema, runtime Runtime) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// executionState holds per-operation state.
type executionState struct {
	runtime        Runtime
	schema         *language.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	errors         []GraphQLError
}

// ExecuteRequest executes the named operation of document with the given
// variable values. Failures surface in the result's Errors; the method never
// panics for runtime-level errors.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *language.Definition
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.Query
	case language.Mutation:
		rootType = e.schema.Mutation
	case language.Subscription:
		rootType = e.schema.Subscription
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		context:        ctx,
	}

	data := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{})
	return &ExecutionResult{Data: data, Errors: state.errors}
}

// executeSelectionSet resolves each collected field of objectType against
// objectValue. It returns nil when a Non-Null child resolved null, so the
// null propagates to the parent.
func executeSelectionSet(state *executionState, objectType *language.Definition, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collected := range groupedFields.orderedFields() {
		fields := collected.Fields
		fieldPath := appendPath(path, collected.ResponseName)

		fieldResult := executeFieldGroup(state, objectType, objectValue, fields, fieldPath)

		if fields[0].Name == "__typename" {
			resultMap[collected.ResponseName] = fieldResult
			continue
		}

		fieldDef := objectType.Fields.ForName(fields[0].Name)
		if fieldDef == nil {
			// Unknown field; error already recorded, leave it out of the map
			continue
		}

		if fieldDef.Type.NonNull && isNullish(fieldResult) {
			if len(path) > 0 {
				return nil
			}
			// Root level: keep executing siblings, write explicit null
			resultMap[collected.ResponseName] = nil
			continue
		}

		if isNullish(fieldResult) {
			resultMap[collected.ResponseName] = nil
		} else {
			resultMap[collected.ResponseName] = fieldResult
		}
	}

	return resultMap
}

func executeFieldGroup(state *executionState, objectType *language.Definition, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]

	if field.Name == "__typename" {
		return objectType.Name
	}

	fieldDef := objectType.Fields.ForName(field.Name)
	if fieldDef == nil {
		state.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", field.Name, objectType.Name), path)
		return nil
	}

	argumentValues := coerceArgumentValues(fieldDef, field.Arguments, state.variableValues, state, path)

	resolved, err := state.runtime.Resolve(state.context, objectType.Name, field.Name, objectValue, argumentValues)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	return completeValue(state, fieldDef.Type, fields, resolved, path)
}

func completeValue(state *executionState, fieldType *language.Type, fields []*language.Field, result any, path Path) any {
	if fieldType.NonNull {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), path)
			}
			return nil
		}
		completed := completeValue(state, nullableOf(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at the original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if isListType(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}

	typeDef := state.schema.Types[fieldType.NamedType]
	if typeDef == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", fieldType.NamedType), path)
		return nil
	}

	switch typeDef.Kind {
	case language.Scalar, language.Enum:
		serialized, err := serializeLeaf(state, typeDef.Name, result)
		if err != nil {
			state.addError(err.Error(), path)
			return nil
		}
		return serialized
	case language.Object:
		return completeObjectValue(state, typeDef, fields, result, path)
	case language.Interface, language.Union:
		return completeAbstractValue(state, typeDef.Name, fields, result, path)
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected kind: %s", typeDef.Kind), path)
		return nil
	}
}

func completeListValue(state *executionState, listType *language.Type, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := listType.Elem
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, inner, fields, item, p)
		if inner.NonNull && isNullish(v) {
			// Null propagates to the whole list; error already recorded
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(state *executionState, objectType *language.Definition, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	return executeSelectionSet(state, objectType, sub, result, path)
}

func completeAbstractValue(state *executionState, abstractTypeName string, fields []*language.Field, result any, path Path) any {
	typeName, err := state.runtime.ResolveType(state.context, abstractTypeName, result)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != language.Object {
		state.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractTypeName, typeName), path)
		return nil
	}
	return completeObjectValue(state, objectType, fields, result, path)
}

func serializeLeaf(state *executionState, typeName string, value any) (any, error) {
	if ls, ok := state.runtime.(LeafSerializer); ok {
		return ls.SerializeLeaf(state.context, typeName, value)
	}
	return value, nil
}

// ---- helpers ----

func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	return document.Operations.ForName(operationName)
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func isListType(t *language.Type) bool {
	return t != nil && t.NamedType == "" && t.Elem != nil
}

// nullableOf strips the Non-Null wrapper.
func nullableOf(t *language.Type) *language.Type {
	return &language.Type{NamedType: t.NamedType, Elem: t.Elem}
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func (state *executionState) addError(message string, path Path) {
	state.errors = append(state.errors, GraphQLError{Message: message, Path: path})
}

func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// isNullish returns true for nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
