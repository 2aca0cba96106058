package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/models/gemini-1.5-flash:generateContent", r.URL.Path)
		req.Equal("test-key", r.URL.Query().Get("key"))

		var in generateRequest
		req.NoError(json.NewDecoder(r.Body).Decode(&in))
		req.Len(in.Contents, 1)
		req.Equal("hello", in.Contents[0].Parts[0].Text)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "hi there"}}}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "gemini-1.5-flash", "Nova", nil)
	reply, err := c.Complete(context.Background(), "hello")
	req.NoError(err)
	req.Equal("hi there", reply)
}

func TestClient_Complete_UpstreamError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "key expired"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-key", "gemini-1.5-flash", "Nova", nil)
	_, err := c.Complete(context.Background(), "hello")
	req.ErrorContains(err, "key expired")
}

func TestClient_Complete_EmptyCandidates(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "gemini-1.5-flash", "Nova", nil)
	_, err := c.Complete(context.Background(), "hello")
	req.ErrorIs(err, ErrNoReply)
}

func TestClient_Enabled(t *testing.T) {
	require.False(t, (&Client{}).Enabled())
	require.True(t, (&Client{APIKey: "k"}).Enabled())
}
