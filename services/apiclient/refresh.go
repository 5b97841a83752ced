package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

const refreshFlight = "refresh"

// RefreshError is returned to every request that waited on a failed refresh.
type RefreshError struct {
	Err error
}

func (err *RefreshError) Error() string { return "refreshing credentials: " + err.Err.Error() }

// Unwrap exposes the cause: a refresh rejected with 401 matches core.ErrUnauthenticated.
func (err *RefreshError) Unwrap() error { return err.Err }

// refresh obtains a new access secret. Concurrent callers share one refresh call
// and all observe its outcome. gen is the generation the caller's request was sent with.
func (c *Client) refresh(ctx context.Context, gen uint64) (string, error) {
	// not bound to the first caller: its cancellation must not fail the others
	ctx = context.WithoutCancel(ctx)

	v, err, shared := c.refreshGroup.Do(refreshFlight, func() (interface{}, error) {
		if c.generation.Load() != gen {
			if rErr := c.failedRefresh(); rErr != nil {
				return "", rErr
			}
			return c.creds.Access(), nil
		}

		access, err := c.requestRefresh(ctx)
		if err != nil {
			rErr := &RefreshError{Err: err}
			c.creds.ClearAll()
			c.refreshErr.Store(rErr)
			c.generation.Add(1)
			c.logger.Warn("refresh failed, credentials cleared", err)
			return "", rErr
		}
		c.creds.SetAccess(access)
		c.refreshErr.Store(nil)
		c.generation.Add(1)
		return access, nil
	})
	if shared {
		c.logger.Debug("joined pending refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) requestRefresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(refreshPath), http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "building refresh request")
	}

	var res *http.Response
	switch c.mode {
	case core.AuthModeCookie:
		res, err = c.send(req)
	default:
		// bare request: authenticated with the refresh secret, not the access one
		secret := c.creds.Refresh()
		if secret == "" {
			return "", errors.Wrap(core.ErrUnauthenticated, "no refresh secret")
		}
		req.Header.Set(headerAuthorization, "Bearer "+secret)
		req.Header.Set(headerRequestID, uuid.NewString())
		res, err = c.roundTrip(req)
	}
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		return "", decodeError(req, res)
	}
	var body auth.RefreshResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decoding refresh response")
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh response carries no access token")
	}
	return body.AccessToken, nil
}

// failedRefresh returns the error of the last refresh, unless a new access
// secret was stored since (a failed refresh clears it, a login sets it).
func (c *Client) failedRefresh() *RefreshError {
	rErr := c.refreshErr.Load()
	if rErr == nil || c.creds.Access() != "" {
		return nil
	}
	return rErr
}
