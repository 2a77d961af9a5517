// Package client talks to a running sleepat daemon over its HTTP API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sleepat/internal/api"
	"sleepat/internal/host"
	"sleepat/internal/status"
	"sleepat/internal/timelog"
	"sleepat/internal/timer"
)

// StatusError is a non-2xx answer from the daemon.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.Code)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request except Watch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Status(ctx context.Context) (host.Status, error) {
	var st host.Status
	err := c.do(ctx, http.MethodGet, "/v1/timer", nil, &st)
	return st, err
}

// CurrentLanguage returns the daemon's display language.
func (c *Client) CurrentLanguage(ctx context.Context) (string, error) {
	st, err := c.Status(ctx)
	if err != nil {
		return "", err
	}
	return st.Language, nil
}

// Start starts a countdown of minutes; zero starts the selected duration.
func (c *Client) Start(ctx context.Context, minutes int) error {
	return c.do(ctx, http.MethodPost, "/v1/timer/start", api.MinutesRequest{Minutes: minutes}, nil)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/timer/stop", nil, nil)
}

func (c *Client) Extend(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/timer/extend", nil, nil)
}

func (c *Client) SetDuration(ctx context.Context, minutes int) error {
	return c.do(ctx, http.MethodPut, "/v1/timer/duration", api.MinutesRequest{Minutes: minutes}, nil)
}

func (c *Client) SetLanguage(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPut, "/v1/language", api.LanguageRequest{Language: code}, nil)
}

// Notice returns the notice on display, or false when nothing is shown.
func (c *Client) Notice(ctx context.Context) (status.Notice, bool, error) {
	var n status.Notice
	var shown bool
	err := c.doRaw(ctx, http.MethodGet, "/v1/status", nil, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		shown = true
		return json.NewDecoder(resp.Body).Decode(&n)
	})
	return n, shown, err
}

func (c *Client) Trigger(ctx context.Context, action status.Action) error {
	return c.do(ctx, http.MethodPost, "/v1/status/actions/"+url.PathEscape(string(action)), nil, nil)
}

func (c *Client) Lock(ctx context.Context) (api.LockStatus, error) {
	var ls api.LockStatus
	err := c.do(ctx, http.MethodGet, "/v1/lock", nil, &ls)
	return ls, err
}

func (c *Client) GrantLock(ctx context.Context) (api.LockStatus, error) {
	var ls api.LockStatus
	err := c.do(ctx, http.MethodPost, "/v1/lock/permission", nil, &ls)
	return ls, err
}

func (c *Client) RevokeLock(ctx context.Context) (api.LockStatus, error) {
	var ls api.LockStatus
	err := c.do(ctx, http.MethodDelete, "/v1/lock/permission", nil, &ls)
	return ls, err
}

func (c *Client) History(ctx context.Context, limit int) ([]timelog.TimeLog, error) {
	path := "/v1/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var logs []timelog.TimeLog
	err := c.do(ctx, http.MethodGet, path, nil, &logs)
	return logs, err
}

// Watch follows the daemon's event stream. The channel closes when ctx is
// done or the daemon ends the stream.
func (c *Client) Watch(ctx context.Context) (<-chan timer.State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/timer/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	states := make(chan timer.State, 16)
	go func() {
		defer close(states)
		defer resp.Body.Close()
		readEvents(ctx, resp.Body, states)
	}()
	return states, nil
}

// readEvents parses "state" events out of a server-sent event stream.
func readEvents(ctx context.Context, r io.Reader, out chan<- timer.State) {
	scanner := bufio.NewScanner(r)
	event := ""
	var data []byte
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "state" && len(data) > 0 {
				var st timer.State
				if err := json.Unmarshal(data, &st); err == nil {
					select {
					case out <- st:
					case <-ctx.Done():
						return
					}
				}
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:"))...)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doRaw(ctx, method, path, body, func(resp *http.Response) error {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any, handle func(*http.Response) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return handle(resp)
}

func decodeError(resp *http.Response) error {
	var body api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}
