package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/westmarch-io/westmarch/internal/api"
	"github.com/westmarch-io/westmarch/internal/models"
	"github.com/westmarch-io/westmarch/internal/token"
)

func TestRenderCharacters(t *testing.T) {
	var out bytes.Buffer

	renderCharacters(&out, []models.Character{
		{ID: 7, Name: "Sandor", Level: 5, Class: "Fighter", Species: "Human", Faction: "Hounds",
			Strength: 18, Dexterity: 12, Constitution: 16, Intelligence: 9, Wisdom: 10, Charisma: 7},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Sandor")
	assert.Contains(t, lines[1], "18/12/16/9/10/7")
	assert.Equal(t, strings.Index(lines[0], "NAME"), strings.Index(lines[1], "Sandor"))
}

func TestRenderClasses(t *testing.T) {
	var out bytes.Buffer

	renderClasses(&out, &models.Page[models.DnDClass]{
		Count: 1,
		Results: []models.DnDClass{
			{Slug: "barbarian", Name: "Barbarian", HitDie: 12, PrimaryAbility: "STR", Source: "PHB"},
			{Slug: "bard", Name: "Bard"},
		},
	})

	output := out.String()
	assert.Contains(t, output, "d12")
	assert.Contains(t, output, "barbarian")
	assert.Contains(t, output, "bard")
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "not authenticated", err: api.ErrNotAuthenticated, contains: "not logged in"},
		{name: "expired", err: fmt.Errorf("wrapped: %w", api.ErrSessionExpired), contains: "expired"},
		{name: "forbidden", err: api.ErrForbidden, contains: "only available to staff"},
		{name: "undecodable", err: token.ErrUndecodable, contains: "cannot read"},
		{name: "api message", err: &api.APIError{StatusCode: 400, Message: "Enter a valid email address."}, contains: "Enter a valid email address."},
		{name: "api status", err: &api.APIError{StatusCode: 502}, contains: "502"},
		{name: "other", err: errors.New("dial tcp: refused"), contains: "refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, describeError(tt.err), tt.contains)
		})
	}
}
