// Package query filters API responses with jq expressions.
package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/itchyny/gojq"
)

// Evaluate runs expression against input and returns every value it
// produces. Variables are exposed to the expression by name and must
// start with "$".
func Evaluate(expression string, input any, variables map[string]any) ([]any, error) {
	parsed, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression: %s, error: %w", expression, err)
	}

	names, values := variableNamesAndValues(variables)

	code, err := gojq.Compile(parsed, gojq.WithVariables(names))
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %s, error: %w", expression, err)
	}

	normalized, err := Normalize(input)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(normalized, values...)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("failed to evaluate jq expression: %s, error: %w", expression, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Normalize converts typed values such as structs into the plain maps,
// slices and float64s gojq understands.
func Normalize(input any) (any, error) {
	switch input.(type) {
	case nil, bool, string, float64, int, map[string]any, []any:
		return input, nil
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query input: %w", err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode query input: %w", err)
	}
	return out, nil
}

// Format renders results one per line: strings raw, everything else as
// indented JSON.
func Format(results []any) (string, error) {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		if s, ok := result.(string); ok {
			lines = append(lines, s)
			continue
		}
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode query result: %w", err)
		}
		lines = append(lines, string(raw))
	}
	return strings.Join(lines, "\n"), nil
}

func variableNamesAndValues(variables map[string]any) ([]string, []any) {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	slices.Sort(names)

	values := make([]any, 0, len(names))
	for _, name := range names {
		values = append(values, variables[name])
	}
	return names, values
}
