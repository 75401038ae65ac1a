package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimyounil1/honey-pot-sub000/internal/chat"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

var _ chat.Backend = (*Gateway)(nil)

// fakeGateway mimics the web gateway: login sets the cookie, every other
// route requires it.
func fakeGateway(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/", HttpOnly: true})
		io.WriteString(w, `{"success":true}`)
	})
	for path, h := range routes {
		h := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("access_token"); err != nil || c.Value != "tok" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, srv *httptest.Server) *Gateway {
	t.Helper()
	g, err := New(srv.URL, nil)
	require.NoError(t, err)
	require.NoError(t, g.Login(context.Background(), "kim", "pw"))
	return g
}

func TestLoginFailure(t *testing.T) {
	srv := fakeGateway(t, nil)
	g, err := New(srv.URL, nil)
	require.NoError(t, err)

	err = g.Login(context.Background(), "kim", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestUnauthorizedWithoutLogin(t *testing.T) {
	srv := fakeGateway(t, map[string]http.HandlerFunc{
		"/api/chat/chats": func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `[]`) },
	})
	g, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = g.ListChats(context.Background())
	assert.True(t, IsUnauthorized(err))
}

func TestSubmitRoutesByChatID(t *testing.T) {
	var paths []string
	var got model.SubmitRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"ok":true,"chat_id":7}`)
	}
	srv := fakeGateway(t, map[string]http.HandlerFunc{"/api/chat": handler, "/api/chat/7": handler})
	g := loggedIn(t, srv)

	resp, err := g.Submit(context.Background(), model.SubmitRequest{
		Messages:      []model.Message{{ID: "local", Role: model.RoleUser, Content: "hello"}},
		AttachmentIDs: []string{},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ChatID)
	assert.Equal(t, int64(7), *resp.ChatID)
	assert.Empty(t, resp.Answer)

	id := int64(7)
	_, err = g.Submit(context.Background(), model.SubmitRequest{ChatID: &id, Messages: got.Messages, AttachmentIDs: []string{}})
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/chat", "/api/chat/7"}, paths)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Empty(t, got.Messages[0].ID)
}

func TestPolledReadsBustCaches(t *testing.T) {
	var queries []string
	record := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
			queries = append(queries, r.URL.Query().Get("t"))
			io.WriteString(w, body)
		}
	}
	srv := fakeGateway(t, map[string]http.HandlerFunc{
		"/api/chat/7/messageState":          record(`{"state":"searching"}`),
		"/api/chat/7/messageState/complete": record(`{"state":"complete"}`),
		"/api/chat/7":                       record(`[{"role":"user","content":"q","state":"done"},{"role":"assistant","content":"a","state":"done"}]`),
		"/api/chat/chats":                   record(`[{"id":7,"title":"q","type":"claim, refund","updated_at":"2025-09-01T10:00:00"}]`),
	})
	g := loggedIn(t, srv)
	ctx := context.Background()

	state, err := g.MessageState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "searching", state)

	require.NoError(t, g.Complete(ctx, 7))

	msgs, err := g.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	chats, err := g.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, model.Tags{"claim", "refund"}, chats[0].Type)
	assert.Equal(t, 10, chats[0].UpdatedAt.Hour())

	require.Len(t, queries, 4)
	for _, q := range queries {
		assert.NotEmpty(t, q)
	}
}

func TestStatusErrorKeepsBody(t *testing.T) {
	srv := fakeGateway(t, map[string]http.HandlerFunc{
		"/api/chat/9": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"no chat"}`)
		},
	})
	g := loggedIn(t, srv)

	_, err := g.History(context.Background(), 9)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Contains(t, se.Body, "no chat")
	assert.False(t, IsUnauthorized(err))
}

func uploadServer(t *testing.T, contentType, body string) *Gateway {
	t.Helper()
	srv := fakeGateway(t, map[string]http.HandlerFunc{
		"/api/file": func(w http.ResponseWriter, r *http.Request) {
			f, fh, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "policy.pdf", fh.Filename)
			assert.Equal(t, "%PDF", string(data))
			w.Header().Set("Content-Type", contentType)
			io.WriteString(w, body)
		},
	})
	return loggedIn(t, srv)
}

func TestUploadDecodesResult(t *testing.T) {
	g := uploadServer(t, "application/json", `{"result_code":"SUCCESS","product_id":"P-1","disease_code":null}`)

	res, err := g.Upload(context.Background(), "policy.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	require.NotNil(t, res.ProductID)
	assert.Equal(t, "P-1", *res.ProductID)
	assert.Nil(t, res.DiseaseCode)
}

func TestUploadKeepsMalformedJSONAsRaw(t *testing.T) {
	g := uploadServer(t, "application/json; charset=utf-8", `<html>bad gateway</html>`)

	res, err := g.Upload(context.Background(), "policy.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.False(t, res.Succeeded())
	assert.Equal(t, "<html>bad gateway</html>", res.Raw)
}

func TestUploadPlainText(t *testing.T) {
	g := uploadServer(t, "text/plain", "queued")

	res, err := g.Upload(context.Background(), "policy.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "queued", res.Raw)
}
