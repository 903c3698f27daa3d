package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/westmarch-io/westmarch/internal/models"
)

const (
	tokenPath        = "api/token/"
	tokenRefreshPath = "api/token/refresh/"
	registerPath     = "api/register/"
	activatePath     = "api/activate/{uid}/{token}/"
)

const (
	registerFailedMessage = "registration failed"
	activateFailedMessage = "the activation link is invalid or has expired"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ObtainToken exchanges a username and password for a credential pair.
// It does not touch the session.
func (c *Client) ObtainToken(ctx context.Context, username string, password string) (*models.TokenPair, error) {
	var pair models.TokenPair

	res, err := c.request(ctx).
		SetBody(&credentials{Username: username, Password: password}).
		SetResult(&pair).
		Post(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to request token: %w", err)
	}

	if res.IsError() {
		message := errorField(res.Body(), "detail")
		if len(message) == 0 {
			message = "invalid username or password"
		}
		return nil, newAPIError(res, message)
	}

	if len(pair.Access) == 0 {
		return nil, newAPIError(res, "token response did not include an access credential")
	}

	return &pair, nil
}

// Login obtains a credential pair and hands it to the session.
func (c *Client) Login(ctx context.Context, username string, password string) (*models.Identity, error) {
	pair, err := c.ObtainToken(ctx, username, password)
	if err != nil {
		return nil, err
	}

	identity, err := c.session.Login(ctx, pair.Access, pair.Refresh)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"username": identity.Username,
	}).Debugln("Logged in")

	return identity, nil
}

// Register creates an inactive account. The server emails an activation
// link on success.
func (c *Client) Register(ctx context.Context, request models.RegisterRequest) error {
	res, err := c.request(ctx).
		SetBody(&request).
		Post(registerPath)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	if res.IsError() {
		message := fieldErrors(res.Body())
		if len(message) == 0 {
			message = registerFailedMessage
		}
		return newAPIError(res, message)
	}

	return nil
}

// Activate confirms an account using the uid and token from the
// activation email.
func (c *Client) Activate(ctx context.Context, uid string, token string) error {
	res, err := c.request(ctx).
		SetPathParams(map[string]string{
			"uid":   uid,
			"token": token,
		}).
		Post(activatePath)
	if err != nil {
		return fmt.Errorf("failed to activate account: %w", err)
	}

	if res.IsError() {
		message := errorField(res.Body(), "error")
		if len(message) == 0 {
			message = activateFailedMessage
		}
		return newAPIError(res, message)
	}

	return nil
}

// Refresh trades the stored refresh credential for a new access
// credential and logs the session in with it. It is never called
// automatically.
func (c *Client) Refresh(ctx context.Context) (*models.Identity, error) {
	if err := c.session.Wait(ctx); err != nil {
		return nil, err
	}

	refresh, ok := c.session.RefreshToken()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	var pair models.TokenPair

	res, err := c.request(ctx).
		SetBody(&refreshRequest{Refresh: refresh}).
		SetResult(&pair).
		Post(tokenRefreshPath)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if res.StatusCode() == http.StatusUnauthorized {
		c.session.Logout(ctx)
		return nil, ErrSessionExpired
	}

	if res.IsError() {
		return nil, newAPIError(res, errorField(res.Body(), "detail"))
	}

	// Without rotation the server only returns a new access credential.
	if len(pair.Refresh) == 0 {
		pair.Refresh = refresh
	}

	return c.session.Login(ctx, pair.Access, pair.Refresh)
}
