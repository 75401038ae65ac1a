package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
)

// Upstream relays gateway calls to the insurance backend API.
type Upstream struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewUpstream(baseURL string, timeout time.Duration) *Upstream {
	return &Upstream{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Call is one relayed request. Path may carry a query string.
type Call struct {
	Method      string
	Path        string
	Token       string
	ContentType string
	Body        io.Reader
	// Timeout overrides the upstream default when positive.
	Timeout time.Duration
}

// Reply is an upstream response read in full.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

func (r *Reply) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Decode unmarshals the reply body into out.
func (r *Reply) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode upstream reply: %w", err)
	}
	return nil
}

// Do sends the call and returns whatever the backend answered. Non-2xx
// statuses are not errors; only transport failures are.
func (u *Upstream) Do(ctx context.Context, call Call) (*Reply, error) {
	timeout := u.timeout
	if call.Timeout > 0 {
		timeout = call.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u.baseURL+call.Path, call.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream %s %s: %w", call.Method, call.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if call.ContentType != "" {
		req.Header.Set("Content-Type", call.ContentType)
	}
	if call.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Token)
	}

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		logger.Warn("proxy.upstream.failed", "method", call.Method, "path", call.Path, "err", err)
		return nil, fmt.Errorf("upstream %s %s: %w", call.Method, call.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream %s %s: read body: %w", call.Method, call.Path, err)
	}
	logger.Debug("proxy.upstream", "method", call.Method, "path", call.Path,
		"status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())
	if resp.StatusCode >= 400 {
		logger.Warn("proxy.upstream.status", "method", call.Method, "path", call.Path,
			"status", resp.StatusCode, "body", string(data))
	}
	return &Reply{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: data}, nil
}

// DoJSON sends body encoded as JSON. A nil body sends no payload.
func (u *Upstream) DoJSON(ctx context.Context, method, path, token string, body any) (*Reply, error) {
	call := Call{Method: method, Path: path, Token: token}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		call.Body = bytes.NewReader(data)
		call.ContentType = "application/json"
	}
	return u.Do(ctx, call)
}

// DoForm sends form url-encoded, as the backend's login and ask endpoints expect.
func (u *Upstream) DoForm(ctx context.Context, method, path, token string, form url.Values, timeout time.Duration) (*Reply, error) {
	return u.Do(ctx, Call{
		Method:      method,
		Path:        path,
		Token:       token,
		ContentType: "application/x-www-form-urlencoded",
		Body:        strings.NewReader(form.Encode()),
		Timeout:     timeout,
	})
}
