package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/westmarch-io/westmarch/internal/models"
)

const (
	charactersPath = "api/personajes/"
	classesPath    = "api/classes/"

	// ClassesPageSize matches the server's page size for classes.
	ClassesPageSize = 12
)

type CharacterFilter struct {
	// Mine limits the list to characters owned by the logged in user.
	Mine bool
}

// ListCharacters returns characters visible to the session.
func (c *Client) ListCharacters(ctx context.Context, filter CharacterFilter) ([]models.Character, error) {
	req, identity, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Mine {
		req.SetQueryParam("user", strconv.FormatInt(identity.UserID, 10))
	}

	res, err := req.Get(charactersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	if err := c.checkProtected(ctx, res); err != nil {
		return nil, err
	}

	return decodeList[models.Character](res.Body())
}

// ListClasses returns one page of classes. Classes are staff-only; other
// users get ErrForbidden without a request being made.
func (c *Client) ListClasses(ctx context.Context, page int, search string) (*models.Page[models.DnDClass], error) {
	req, identity, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	if !identity.IsElevated() {
		return nil, ErrForbidden
	}

	if page < 1 {
		page = 1
	}

	var result models.Page[models.DnDClass]

	res, err := req.
		SetQueryParams(map[string]string{
			"page":   strconv.Itoa(page),
			"search": strings.TrimSpace(search),
		}).
		SetResult(&result).
		Get(classesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	if err := c.checkProtected(ctx, res); err != nil {
		return nil, err
	}

	return &result, nil
}

// Get performs a protected GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, _, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	res, err := req.Get(strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", path, err)
	}

	if err := c.checkProtected(ctx, res); err != nil {
		return err
	}

	if out == nil || len(res.Body()) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// decodeList accepts both a bare JSON array and a paginated envelope.
func decodeList[T any](body []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var page models.Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return page.Results, nil
}
