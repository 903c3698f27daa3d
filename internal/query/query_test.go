package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/westmarch-io/westmarch/internal/models"
)

func TestEvaluate(t *testing.T) {
	characters := []models.Character{
		{ID: 1, User: 3, Name: "Jon", Level: 4},
		{ID: 2, User: 5, Name: "Ygritte", Level: 6},
	}

	tests := []struct {
		name       string
		expression string
		variables  map[string]any
		expected   []any
	}{
		{
			name:       "names",
			expression: ".[].nombre_personaje",
			expected:   []any{"Jon", "Ygritte"},
		},
		{
			name:       "select with variable",
			expression: "[.[] | select(.user == $user_id) | .id]",
			variables:  map[string]any{"$user_id": 5},
			expected:   []any{[]any{float64(2)}},
		},
		{
			name:       "no results",
			expression: ".[] | select(.nivel > 10)",
			expected:   nil,
		},
		{
			name:       "length",
			expression: "length",
			expected:   []any{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expression, characters, tt.variables)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(".[", nil, nil)
	assert.ErrorContains(t, err, "parse")

	_, err = Evaluate("$missing", nil, nil)
	assert.ErrorContains(t, err, "compile")

	_, err = Evaluate(".foo", []any{1}, nil)
	assert.ErrorContains(t, err, "evaluate")
}

func TestFormat(t *testing.T) {
	out, err := Format([]any{"plain", map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, "plain\n{\n  \"a\": 1\n}", out)
}
