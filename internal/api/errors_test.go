package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "not json", body: "<html>", expected: ""},
		{name: "list values", body: `{"b": ["two", "three"], "a": ["one"]}`, expected: "one two three"},
		{name: "string value", body: `{"detail": "bad"}`, expected: "bad"},
		{name: "nested and numbers", body: `{"x": [["deep"], 4], "y": null}`, expected: "deep 4"},
		{name: "array body", body: `["a"]`, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fieldErrors([]byte(tt.body)))
		})
	}
}

func TestAPIError(t *testing.T) {
	assert.Equal(t, "api error 500", (&APIError{StatusCode: 500}).Error())
	assert.Equal(t, "api error 400: bad", (&APIError{StatusCode: 400, Message: "bad"}).Error())
}
