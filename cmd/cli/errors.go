package cli

import (
	"errors"
	"fmt"

	"github.com/westmarch-io/westmarch/internal/api"
	"github.com/westmarch-io/westmarch/internal/token"
)

// describeError turns client errors into messages for the terminal.
func describeError(err error) error {
	var apiErr *api.APIError

	switch {
	case errors.Is(err, api.ErrNotAuthenticated):
		return fmt.Errorf("you are not logged in. Run 'westmarch login' first")
	case errors.Is(err, api.ErrSessionExpired):
		return fmt.Errorf("your session has expired. Run 'westmarch login' again")
	case errors.Is(err, api.ErrForbidden):
		return fmt.Errorf("access denied: this section is only available to staff")
	case errors.Is(err, token.ErrUndecodable):
		return fmt.Errorf("the server returned a credential this client cannot read: %w", err)
	case errors.As(err, &apiErr):
		if len(apiErr.Message) > 0 {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("the server responded with status %d", apiErr.StatusCode)
	}
	return err
}
