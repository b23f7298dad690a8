package sonos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qrplay/internal/domain"
	"qrplay/internal/infra"
)

const DefaultPort = 5005

// Client talks to a node-sonos-http-api style server: every action is a
// GET on /<room>/<action>/... answered with JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      infra.RetryConfig
}

func NewClient(host string, port int, timeout time.Duration) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return NewClientWithURL("http://"+net.JoinHostPort(host, strconv.Itoa(port)), timeout)
}

func NewClientWithURL(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      infra.DefaultRetryConfig(),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the subset of the API's JSON answer used to judge success.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Execute issues the call. It fails on transport errors, non-2xx answers,
// unparseable bodies and on a "status":"error" response; a missing status
// counts as success.
func (c *Client) Execute(ctx context.Context, call domain.Call) error {
	body, err := c.doRequest(ctx, call.URLPath())
	if err != nil {
		return err
	}
	return checkStatus(body)
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	var respBody []byte

	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isDialError(err) {
				return fmt.Errorf("connecting to speaker api: %w", err)
			}
			// The request may have reached the speaker; do not send it twice.
			return infra.Permanent(fmt.Errorf("sending request: %w", err))
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return infra.Permanent(fmt.Errorf("reading response: %w", err))
		}

		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return fmt.Errorf("speaker api error %d (retryable): %s", resp.StatusCode, string(respBody))
		}

		if resp.StatusCode >= 400 {
			return infra.Permanent(fmt.Errorf("%w: status %d: %s", domain.ErrSpeaker, resp.StatusCode, strings.TrimSpace(string(respBody))))
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return respBody, nil
}

func checkStatus(body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if !json.Valid(body) {
		return fmt.Errorf("parsing response: invalid json: %q", string(body))
	}

	// Some endpoints answer with arrays or bare values; only objects carry a status.
	if body[0] != '{' {
		return nil
	}

	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if r.Status == "error" {
		if r.Error != "" {
			return fmt.Errorf("%w: %s", domain.ErrSpeaker, r.Error)
		}
		return domain.ErrSpeaker
	}

	return nil
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
