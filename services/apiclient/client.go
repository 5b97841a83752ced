package apiclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

// HeaderFields asks the API for a subset of the fields of a resource.
const HeaderFields = "X-Fields"

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"
	headerCookie        = "Cookie"

	defaultTimeout = 30 * time.Second
)

type Options struct {
	BaseURL     string // ex.: https://api.potencialize.app/api/v1
	Mode        core.AuthMode
	Credentials *auth.Credentials
	CSRF        *auth.CSRFReader // cookie mode
	Jar         http.CookieJar   // cookie mode
	Timeout     time.Duration
	Transport   http.RoundTripper
	Logger      core.Logger
}

// Client is the authenticated HTTP client of the dashboard API.
// It attaches credentials to every request and transparently refreshes
// an expired access secret, at most once per request and once per client at a time.
type Client struct {
	base   *url.URL
	mode   core.AuthMode
	creds  *auth.Credentials
	csrf   *auth.CSRFReader
	http   *http.Client
	logger core.Logger

	refreshGroup singleflight.Group
	// generation is bumped on every completed refresh, refreshErr holds its failure.
	generation atomic.Uint64
	refreshErr atomic.Pointer[RefreshError]
}

var _ auth.API = (*Client)(nil)

func New(opts *Options) (*Client, error) {
	if opts == nil {
		return nil, errors.New("apiclient: nil options")
	}
	if !opts.Mode.Valid() {
		return nil, errors.Errorf("apiclient: invalid auth mode %q", opts.Mode)
	}
	if opts.Credentials == nil {
		return nil, errors.New("apiclient: credentials are required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: parsing base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("apiclient: base url %q must be absolute", opts.BaseURL)
	}
	if opts.Mode == core.AuthModeCookie && opts.Jar == nil {
		return nil, errors.New("apiclient: cookie mode requires a cookie jar")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Client{
		base:  base,
		mode:  opts.Mode,
		creds: opts.Credentials,
		csrf:  opts.CSRF,
		http: &http.Client{
			Transport: opts.Transport,
			Jar:       opts.Jar,
			Timeout:   timeout,
		},
		logger: logger,
	}, nil
}

func (c *Client) Mode() core.AuthMode { return c.mode }

// URL resolves an API path against the base url (query string allowed).
func (c *Client) URL(p string) string {
	return c.base.String() + "/" + strings.TrimLeft(p, "/")
}

// Do sends req with credentials attached. On a first 401 it refreshes the access
// secret (joining any refresh in flight) and re-issues req once.
// The body of req must be replayable (see http.Request.GetBody).
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get(headerRequestID) == "" {
		// a retry keeps the id of the first attempt
		req = req.Clone(req.Context())
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	gen := c.generation.Load()
	res, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusUnauthorized || !refreshable(req.URL.Path) {
		return res, nil
	}
	return c.retryUnauthorized(req, res, gen)
}

func (c *Client) retryUnauthorized(req *http.Request, res *http.Response, gen uint64) (*http.Response, error) {
	if c.generation.Load() == gen {
		if c.mode == core.AuthModeBearer && !c.creds.HasRefresh() {
			c.creds.ClearAll()
			return res, nil
		}
		discard(res)
		if _, err := c.refresh(req.Context(), gen); err != nil {
			return nil, err
		}
	} else {
		// a refresh completed since req was sent: share its outcome
		discard(res)
		if rErr := c.failedRefresh(); rErr != nil {
			return nil, rErr
		}
	}

	retry, err := replay(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("retrying request", map[string]interface{}{
		"method":     req.Method,
		"path":       req.URL.Path,
		"request_id": req.Header.Get(headerRequestID),
	})
	return c.send(retry)
}

// send attaches credentials to a copy of req then performs the round trip.
// No interception. req is left untouched (the jar writes its cookies into the request it sends).
func (c *Client) send(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	c.attach(out)
	return c.roundTrip(out)
}

func (c *Client) attach(req *http.Request) {
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}

	switch c.mode {
	case core.AuthModeCookie:
		// credentials travel in cookies
		req.Header.Del(headerAuthorization)
		if !isMutating(req.Method) {
			return
		}
		if token, ok := c.csrf.CSRFToken(csrfKindFor(req.URL.Path)); ok {
			req.Header.Set(auth.CSRFHeader, token)
		}
	default:
		req.Header.Del(auth.CSRFHeader)
		if access := c.creds.Access(); access != "" {
			req.Header.Set(headerAuthorization, "Bearer "+access)
		}
	}
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &core.ConnectivityError{
			Op:      req.Method + " " + req.URL.Path,
			Timeout: isTimeout(err),
			Err:     err,
		}
	}
	return res, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nErr net.Error
	return errors.As(err, &nErr) && nErr.Timeout()
}

// replay clones req with a fresh body and without the previous credentials.
func replay(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	retry.Header.Del(headerAuthorization)
	retry.Header.Del(auth.CSRFHeader)
	retry.Header.Del(headerCookie)
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.Errorf("apiclient: %s %s: body cannot be replayed", req.Method, req.URL.Path)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "apiclient: replaying body")
	}
	retry.Body = body
	return retry, nil
}

// discard drains and closes res so the connection can be reused.
func discard(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	_ = res.Body.Close()
}
