package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

const defaultTimeout = 5 * time.Second

// Client talks to a score server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at addr (host:port or a full URL).
func New(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Get fetches the ranked list for a scope.
func (c *Client) Get(ctx context.Context, version, level string) (scores.List, error) {
	q := url.Values{"version": {version}, "level": {level}}

	body, err := c.do(ctx, http.MethodGet, "/get?"+q.Encode())
	if err != nil {
		return nil, err
	}

	if !gjson.Valid(body) || !gjson.Parse(body).IsArray() {
		return nil, fmt.Errorf("unexpected response: %q", body)
	}

	list := scores.List{}
	gjson.Parse(body).ForEach(func(_, rec gjson.Result) bool {
		list = append(list, scores.Record{
			Name:  rec.Get("name").String(),
			Score: rec.Get("score").Float(),
		})
		return true
	})

	return list, nil
}

// Submit posts a score and reports whether it made the list.
func (c *Client) Submit(ctx context.Context, version, level string, rec scores.Record) (bool, error) {
	q := url.Values{
		"version": {version},
		"level":   {level},
		"name":    {rec.Name},
		"score":   {strconv.FormatFloat(rec.Score, 'g', -1, 64)},
	}

	body, err := c.do(ctx, http.MethodPost, "/submit?"+q.Encode())
	if err != nil {
		return false, err
	}

	if !gjson.Get(body, "0.success").Bool() {
		return false, fmt.Errorf("submission not accepted: %q", body)
	}

	kept := gjson.Get(body, "1.new_high_score")
	if !kept.IsBool() {
		return false, fmt.Errorf("unexpected response: %q", body)
	}

	return kept.Bool(), nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode, Message: gjson.GetBytes(body, "error").String()}
	}

	return string(body), nil
}
