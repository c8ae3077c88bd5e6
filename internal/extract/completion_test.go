package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path string
	auth string
	body map[string]interface{}
}

func fakeCompletionServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &rec.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func completionBody(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo-0125",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + content + `}}]}`
}

func TestCompleteSuccess(t *testing.T) {
	srv, rec := fakeCompletionServer(t, http.StatusOK, completionBody(`"  {\"name\": \"Lamp\"}\n"`))
	client := NewCompletionClient("sk-test", WithBaseURL(srv.URL+"/v1/"))

	content, err := client.Complete(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Lamp"}`, content)

	assert.Equal(t, "/v1/chat/completions", rec.path)
	assert.Equal(t, "Bearer sk-test", rec.auth)
	assert.Equal(t, string(DefaultModel), rec.body["model"])
	assert.InDelta(t, 0.7, rec.body["temperature"], 1e-9)
	messages, ok := rec.body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "extract this", msg["content"])
}

func TestCompleteModelOption(t *testing.T) {
	srv, rec := fakeCompletionServer(t, http.StatusOK, completionBody(`"{}"`))
	client := NewCompletionClient("sk-test",
		WithBaseURL(srv.URL+"/v1/"),
		WithModel("local-model"),
		WithModel(""),
	)
	assert.Equal(t, "local-model", client.Model())

	_, err := client.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "local-model", rec.body["model"])
}

func TestCompleteUpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, 500},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, 401},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, 0},
		{"null content", http.StatusOK, completionBody("null"), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := fakeCompletionServer(t, tc.status, tc.body)
			client := NewCompletionClient("sk-test", WithBaseURL(srv.URL+"/v1/"))

			_, err := client.Complete(context.Background(), "p")
			var uerr *UpstreamError
			require.True(t, errors.As(err, &uerr), "got %v", err)
			assert.Equal(t, tc.code, uerr.StatusCode)
		})
	}
}

func TestCompleteCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	client := NewCompletionClient("sk-test", WithBaseURL(srv.URL+"/v1/"))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "p")
	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}
