package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONSendsBearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/7/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"role":"user","content":"hi"}]`))
	}))
	defer srv.Close()

	u := NewUpstream(srv.URL+"/", time.Second)
	reply, err := u.DoJSON(context.Background(), http.MethodPost, "/chat/7/messages", "tok", map[string]int{"a": 1})
	require.NoError(t, err)
	assert.True(t, reply.OK())
	assert.Equal(t, "application/json", reply.ContentType)

	var out []map[string]string
	require.NoError(t, reply.Decode(&out))
	assert.Equal(t, "hi", out[0]["content"])
}

func TestDoRelaysErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"You do not have permission to access this chat."}`))
	}))
	defer srv.Close()

	reply, err := NewUpstream(srv.URL, time.Second).DoJSON(context.Background(), http.MethodGet, "/chat/1/messages", "", nil)
	require.NoError(t, err)
	assert.False(t, reply.OK())
	assert.Equal(t, http.StatusForbidden, reply.Status)
	assert.Contains(t, string(reply.Body), "permission")
}

func TestDoFormEncodesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "kim", r.PostForm.Get("username"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"access_token":"abc"}`))
	}))
	defer srv.Close()

	reply, err := NewUpstream(srv.URL, time.Second).DoForm(context.Background(), http.MethodPost, "/users/login", "",
		url.Values{"username": {"kim"}, "password": {"pw"}}, 0)
	require.NoError(t, err)
	assert.True(t, reply.OK())
}

func TestDoTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewUpstream(srv.URL, time.Hour).Do(context.Background(), Call{
		Method:  http.MethodGet,
		Path:    "/slow",
		Timeout: 20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
