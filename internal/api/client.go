// Package api talks to the West March REST API on behalf of a session.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/westmarch-io/westmarch/internal/common"
	"github.com/westmarch-io/westmarch/internal/models"
)

const (
	DefaultTimeout  = 15 * time.Second
	RequestIDHeader = "X-Request-ID"
)

// SessionSource is the part of the session manager the client needs.
// *sessions.Manager satisfies it.
type SessionSource interface {
	Wait(ctx context.Context) error
	Identity() (*models.Identity, bool)
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	Login(ctx context.Context, access string, refresh string) (*models.Identity, error)
	Logout(ctx context.Context)
}

type Client struct {
	http    *resty.Client
	session SessionSource
}

type Option func(*resty.Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *resty.Client) {
		c.SetHeader("User-Agent", userAgent)
	}
}

func NewClient(baseURL string, session SessionSource, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", common.GetUserAgent())

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if len(req.Header.Get(RequestIDHeader)) == 0 {
			req.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	for _, opt := range opts {
		opt(httpClient)
	}

	return &Client{
		http:    httpClient,
		session: session,
	}
}

// request starts an unauthenticated request.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// authorized waits for the session to finish initializing and starts a
// request carrying its bearer credential.
func (c *Client) authorized(ctx context.Context) (*resty.Request, *models.Identity, error) {
	if err := c.session.Wait(ctx); err != nil {
		return nil, nil, err
	}

	identity, ok := c.session.Identity()
	if !ok {
		return nil, nil, ErrNotAuthenticated
	}

	access, ok := c.session.AccessToken()
	if !ok {
		return nil, nil, ErrNotAuthenticated
	}

	return c.request(ctx).SetAuthToken(access), identity, nil
}

// checkProtected maps a protected response to an error. A 401 logs the
// session out before returning ErrSessionExpired.
func (c *Client) checkProtected(ctx context.Context, res *resty.Response) error {
	switch res.StatusCode() {
	case http.StatusUnauthorized:
		logrus.WithFields(logrus.Fields{
			"url": res.Request.URL,
		}).Infoln("Credential rejected by the server, logging out")
		c.session.Logout(ctx)
		return ErrSessionExpired
	case http.StatusForbidden:
		return ErrForbidden
	}

	if res.IsError() {
		message := errorField(res.Body(), "detail")
		return newAPIError(res, message)
	}

	return nil
}
