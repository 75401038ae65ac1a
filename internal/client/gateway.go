package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

// StatusError is a non-2xx gateway response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// IsUnauthorized reports whether err means the session cookie is missing or expired.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// Gateway talks to the web gateway the way a browser would: the session
// lives in a cookie jar and polled reads bypass caches.
type Gateway struct {
	baseURL string
	http    *http.Client
}

// New returns a Gateway for baseURL. A nil client gets defaults; a client
// without a jar gets a fresh one.
func New(baseURL string, hc *http.Client) (*Gateway, error) {
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c := *hc
		c.Jar = jar
		hc = &c
	}
	return &Gateway{baseURL: strings.TrimRight(baseURL, "/"), http: hc}, nil
}

func (g *Gateway) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := g.newRequest(ctx, http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := g.do(req, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Signup registers a user. The payload is passed to the backend as-is.
func (g *Gateway) Signup(ctx context.Context, payload any) error {
	if err := g.doJSON(ctx, http.MethodPost, "/api/signup", payload, nil); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

func (g *Gateway) Logout(ctx context.Context) error {
	if err := g.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (g *Gateway) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
	path := "/api/chat"
	if req.ChatID != nil {
		path += "/" + strconv.FormatInt(*req.ChatID, 10)
	}
	var out model.SubmitResponse
	if err := g.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return &out, nil
}

func (g *Gateway) MessageState(ctx context.Context, chatID int64) (string, error) {
	var out model.StateResponse
	if err := g.getFresh(ctx, fmt.Sprintf("/api/chat/%d/messageState", chatID), &out); err != nil {
		return "", fmt.Errorf("message state %d: %w", chatID, err)
	}
	return out.State, nil
}

func (g *Gateway) Complete(ctx context.Context, chatID int64) error {
	if err := g.getFresh(ctx, fmt.Sprintf("/api/chat/%d/messageState/complete", chatID), nil); err != nil {
		return fmt.Errorf("complete %d: %w", chatID, err)
	}
	return nil
}

func (g *Gateway) History(ctx context.Context, chatID int64) ([]model.Message, error) {
	var out []model.Message
	if err := g.getFresh(ctx, fmt.Sprintf("/api/chat/%d", chatID), &out); err != nil {
		return nil, fmt.Errorf("history %d: %w", chatID, err)
	}
	return out, nil
}

func (g *Gateway) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	var out []model.ChatSummary
	if err := g.getFresh(ctx, "/api/chat/chats", &out); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return out, nil
}

// Upload posts r as the "file" field. A body that claims JSON but does not
// decode is kept as raw text rather than failing the upload.
func (g *Gateway) Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload %s: read: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}

	req, err := g.newRequest(ctx, http.MethodPost, "/api/file", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upload %s: read reply: %w", filename, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	res := &model.UploadResult{}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		res.Raw = string(data)
		return res, nil
	}
	if err := json.Unmarshal(data, res); err != nil {
		logger.Warn("client.upload.bad_json", "file", filename, "err", err)
		return &model.UploadResult{Raw: string(data)}, nil
	}
	return res, nil
}

// getFresh issues a GET that no cache along the way may answer.
func (g *Gateway) getFresh(ctx context.Context, path string, out any) error {
	path += "?t=" + strconv.FormatInt(time.Now().UnixNano(), 10)
	req, err := g.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")
	return g.do(req, out)
}

func (g *Gateway) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := g.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.do(req, out)
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (g *Gateway) do(req *http.Request, out any) error {
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
