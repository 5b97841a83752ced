package apiclient

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

func (c *Client) Login(ctx context.Context, body auth.LoginBody) (auth.LoginResponse, error) {
	var res auth.LoginResponse
	if err := c.Post(ctx, loginPath, body, &res); err != nil {
		return auth.LoginResponse{}, err
	}
	if res.AccessToken == "" {
		return auth.LoginResponse{}, errors.New("login response carries no access token")
	}
	c.refreshErr.Store(nil)
	return res, nil
}

// Refresh obtains a new access secret, sharing any refresh already in flight.
func (c *Client) Refresh(ctx context.Context) (auth.RefreshResponse, error) {
	access, err := c.refresh(ctx, c.generation.Load())
	if err != nil {
		return auth.RefreshResponse{}, err
	}
	return auth.RefreshResponse{AccessToken: access}, nil
}

// Logout ends the cookie-mode session server side.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, logoutPath, nil, nil)
}

// LogoutRefresh revokes the bearer-mode refresh secret. It is sent bare,
// authenticated with the refresh secret itself.
func (c *Client) LogoutRefresh(ctx context.Context) error {
	secret := c.creds.Refresh()
	if secret == "" {
		return errors.Wrap(core.ErrUnauthenticated, "no refresh secret")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(logoutRefreshPath), http.NoBody)
	if err != nil {
		return errors.Wrap(err, "building logout request")
	}
	req.Header.Set(headerAuthorization, "Bearer "+secret)
	req.Header.Set(headerRequestID, uuid.NewString())

	res, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusMultipleChoices {
		return decodeError(req, res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
