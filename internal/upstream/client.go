package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/pkg/config"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

// Client talks to the school backend API. All grid data and every mutation
// flows through it; the console holds no marks of its own.
type Client struct {
	baseURL string
	client  *http.Client
	retries int
	logger  *zap.Logger
}

// New constructs a Client with sane defaults.
func New(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.RetryCount
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
	}
}

type loginPayload struct {
	ID   string `json:"id"`
	Pass string `json:"pass"`
}

// LoginReply is the school backend's login acknowledgement.
type LoginReply struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Login exchanges credentials for an upstream token.
func (c *Client) Login(ctx context.Context, id, pass string) (*LoginReply, error) {
	var reply LoginReply
	status, err := c.doJSON(ctx, http.MethodPost, "/login", "", nil, loginPayload{ID: id, Pass: pass}, &reply)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, appErrors.ErrInvalidCredentials
	}
	if status >= 400 {
		return nil, appErrors.Clone(appErrors.ErrUpstreamRejected, fmt.Sprintf("login failed with status %d", status))
	}
	return &reply, nil
}

// Filters fetches the selectable filter dimensions, optionally scoped (for
// example by class/division so dependent options narrow).
func (c *Client) Filters(ctx context.Context, token string, scope map[string]string) (*models.FilterMetadata, error) {
	values := url.Values{}
	for name, value := range scope {
		if value != "" {
			values.Set(name, value)
		}
	}
	var meta models.FilterMetadata
	status, err := c.getJSON(ctx, "/filters", token, values, &meta)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.statusError(status, "filter metadata")
	}
	return &meta, nil
}

// Marks fetches one page of mark records for the given query.
func (c *Client) Marks(ctx context.Context, token string, query models.MarksQuery) (*models.MarksPage, error) {
	var page models.MarksPage
	status, err := c.getJSON(ctx, "/marks", token, query.Values(), &page)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, c.statusError(status, "marks page")
	}
	return &page, nil
}

// UpdateMark commits a single mark mutation.
func (c *Client) UpdateMark(ctx context.Context, token string, update models.MarkUpdate) error {
	status, err := c.doJSON(ctx, http.MethodPost, "/update-mark", token, nil, update, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return c.mutationError(status)
	}
	return nil
}

// BulkUpdate commits a batch of mark mutations in one request. Any
// non-success response is treated as a failure of the whole batch.
func (c *Client) BulkUpdate(ctx context.Context, token string, updates []models.MarkUpdate) error {
	status, err := c.doJSON(ctx, http.MethodPatch, "/bulk_update", token, nil, updates, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return c.mutationError(status)
	}
	return nil
}

// getJSON performs a GET with bounded retries on transport errors and 5xx
// responses. Mutations are never retried.
func (c *Client) getJSON(ctx context.Context, path, token string, values url.Values, dest interface{}) (int, error) {
	var lastStatus int
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		status, err := c.doJSON(ctx, http.MethodGet, path, token, values, nil, dest)
		if err == nil && status < 500 {
			return status, nil
		}
		lastStatus, lastErr = status, err
		if ctx.Err() != nil {
			break
		}
		if attempt < c.retries {
			c.logger.Warn("upstream request retrying",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Int("status", status),
				zap.Error(err))
		}
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return lastStatus, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, values url.Values, body, dest interface{}) (int, error) {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "school backend unreachable")
	}
	defer resp.Body.Close()

	if dest != nil && resp.StatusCode < 400 {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return resp.StatusCode, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "decode upstream response")
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}

func (c *Client) statusError(status int, what string) error {
	if status == http.StatusUnauthorized {
		return appErrors.ErrSessionExpired
	}
	return appErrors.Clone(appErrors.ErrFetchFailed, fmt.Sprintf("failed to fetch %s (status %d)", what, status))
}

// mutationError keeps backend rejection distinguishable from local
// validation failure: the console validated the value already, so a 4xx here
// means the backend disagreed, not that the input was malformed.
func (c *Client) mutationError(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return appErrors.ErrSessionExpired
	case status >= 500:
		return appErrors.ErrMutationFailed
	default:
		return appErrors.Clone(appErrors.ErrUpstreamRejected, fmt.Sprintf("the school backend rejected the update (status %d)", status))
	}
}
