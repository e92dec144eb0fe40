package automate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

const (
	apiPrefix = "/cwa/api/v1"

	computersPath = apiPrefix + "/computers"
	clientsPath   = apiPrefix + "/clients"
	locationsPath = apiPrefix + "/locations"
	groupsPath    = apiPrefix + "/groups"
)

// errUnauthorized marks a 401 that may still be retried once.
var errUnauthorized = errors.New("authorization denied")

// Client talks to the ConnectWise Automate REST API. It owns the bearer
// credential for its configuration and refreshes it on demand.
//
// A Client is safe for concurrent use, although every operation except
// CheckComputersExist issues its requests sequentially.
type Client struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
	session    *session
	logger     hclog.Logger
	metrics    *Metrics
	now        func() time.Time
	online     map[string]struct{}
}

// NewClient creates a new Automate API client. The configuration is copied;
// later changes to cfg have no effect.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, &Error{Op: "NewClient", Err: ErrConfiguration, Msg: "config is required"}
	}

	c := *cfg
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = c.NewHTTPClient()
	}

	logger := c.Logger.Named("automate")

	online := make(map[string]struct{}, len(c.OnlineStatuses))
	for _, s := range c.OnlineStatuses {
		online[s] = struct{}{}
	}

	return &Client{
		cfg:        &c,
		baseURL:    c.ServerURL,
		httpClient: httpClient,
		session:    newSession(&c, httpClient, logger),
		logger:     logger,
		metrics:    c.Metrics,
		now:        c.Now,
		online:     online,
	}, nil
}

// isOnline reports whether a Status value counts as online.
func (c *Client) isOnline(status string) bool {
	_, ok := c.online[status]
	return ok
}

// request describes one outbound call.
type request struct {
	method string
	path   string
	query  url.Values
}

// do sends req with a valid token attached and returns the response body.
//
// An authorization failure invalidates the cached token and the request is
// sent once more with a freshly issued one. A second denial is returned as
// ErrAuthentication. Nothing else is retried.
func (c *Client) do(ctx context.Context, op string, req request) ([]byte, error) {
	var (
		body    []byte
		retried bool
	)

	operation := func() error {
		tok, err := c.session.ensureAuthenticated(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		status, respBody, err := c.send(ctx, op, req, tok)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch {
		case status == http.StatusUnauthorized && retried:
			return backoff.Permanent(&Error{
				Op:         op,
				Err:        ErrAuthentication,
				StatusCode: status,
				Body:       string(respBody),
				Msg:        "request denied after re-authentication",
			})

		case status == http.StatusUnauthorized:
			retried = true
			c.session.invalidate()
			c.metrics.observeAuthRetry()
			c.logger.Warn("authorization denied, re-authenticating",
				"operation", op,
				"path", req.path,
			)
			return errUnauthorized

		case status < 200 || status >= 300:
			return backoff.Permanent(&Error{
				Op:         op,
				Err:        ErrRequest,
				StatusCode: status,
				Body:       string(respBody),
			})
		}

		body = respBody
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return nil, err
		}
		// Context cancellation surfaces here without a response.
		return nil, &Error{Op: op, Err: ErrRequest, Cause: err}
	}

	return body, nil
}

// send performs a single HTTP exchange with tok attached.
func (c *Client) send(ctx context.Context, op string, r request, tok *oauth2.Token) (int, []byte, error) {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, nil)
	if err != nil {
		return 0, nil, &Error{Op: op, Err: ErrRequest, Cause: err, Msg: "failed to create request"}
	}

	tok.SetAuthHeader(req)
	req.Header.Set(headerClientID, c.cfg.ClientID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observeRequest(op, 0, elapsed)
		return 0, nil, &Error{Op: op, Err: ErrRequest, Cause: err}
	}
	defer resp.Body.Close()

	c.metrics.observeRequest(op, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		"operation", op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", elapsed,
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{
			Op:         op,
			Err:        ErrRequest,
			StatusCode: resp.StatusCode,
			Cause:      err,
			Msg:        "failed to read response",
		}
	}

	return resp.StatusCode, respBody, nil
}

// get issues a GET for path with the given query.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, op, request{method: http.MethodGet, path: path, query: query})
}

// list fetches a single page of records.
func (c *Client) list(ctx context.Context, op, path string, q ListQuery) ([]Record, error) {
	body, err := c.get(ctx, op, path, q.Values())
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, &Error{Op: op, Err: ErrRequest, Cause: err, Msg: "failed to decode response"}
	}
	return records, nil
}

// detail fetches a single record by id.
func (c *Client) detail(ctx context.Context, op, path string, id int) (Record, error) {
	body, err := c.get(ctx, op, fmt.Sprintf("%s/%d", path, id), nil)
	if err != nil {
		return nil, err
	}

	record, err := decodeRecord(body)
	if err != nil {
		return nil, &Error{Op: op, Err: ErrRequest, Cause: err, Msg: "failed to decode response"}
	}
	return record, nil
}
