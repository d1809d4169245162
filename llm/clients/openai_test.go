package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/llm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEndpoint struct {
	calls   atomic.Int32
	lastReq atomic.Value
	server  *httptest.Server
}

func newFakeEndpoint(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeEndpoint {
	t.Helper()
	f := &fakeEndpoint{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)
		req["_path"] = r.URL.Path
		req["_auth"] = r.Header.Get("Authorization")
		f.lastReq.Store(req)
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeEndpoint) request() map[string]any {
	v, _ := f.lastReq.Load().(map[string]any)
	return v
}

func replyWith(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *CompletionClient {
	t.Helper()
	c, err := NewCompletionClient(CompletionConfig{
		Token:       "dapi-test",
		BaseURL:     baseURL,
		Model:       "databricks-gpt-oss-120b",
		MaxTokens:   64,
		Temperature: 0.2,
		Timeout:     timeout,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

var twoMessages = models.Conversation("be helpful", "hello")

func TestGenerateReply_EmptyMessagesNoNetworkCall(t *testing.T) {
	f := newFakeEndpoint(t, replyWith(`{}`))
	c := newTestClient(t, f.server.URL, time.Second)

	_, err := c.GenerateReply(context.Background(), nil)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, KindInvalidRequest, reqErr.Kind)
	assert.Contains(t, err.Error(), "at least one message required")
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestGenerateReply_InvalidRoleNoNetworkCall(t *testing.T) {
	f := newFakeEndpoint(t, replyWith(`{}`))
	c := newTestClient(t, f.server.URL, time.Second)

	for _, role := range []models.Role{"", "tool", "System"} {
		messages := []models.ChatMessage{
			{Role: models.RoleSystem, Content: "be helpful"},
			{Role: role, Content: "hello"},
		}
		_, err := c.GenerateReply(context.Background(), messages)

		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr), string(role))
		assert.Equal(t, KindInvalidRequest, reqErr.Kind)
		assert.Contains(t, err.Error(), "message 1 is invalid")
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestGenerateReply_RequestShape(t *testing.T) {
	f := newFakeEndpoint(t, replyWith(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	c := newTestClient(t, f.server.URL+"/serving-endpoints/", time.Second)

	reply, err := c.GenerateReply(context.Background(), twoMessages)
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
	assert.Equal(t, int32(1), f.calls.Load())

	req := f.request()
	assert.Equal(t, "/serving-endpoints/chat/completions", req["_path"])
	assert.Equal(t, "Bearer dapi-test", req["_auth"])
	assert.Equal(t, "databricks-gpt-oss-120b", req["model"])
	assert.EqualValues(t, 64, req["max_tokens"])
	assert.InDelta(t, 0.2, req["temperature"], 1e-9)

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestGenerateReply_NormalizesAndConcatenatesChoices(t *testing.T) {
	body := `{"choices":[
		{"message":{"content":[{"type":"text","text":"  foo"},{"text":"bar"}]}},
		{"message":{"content":[{"content":"baz"},"! "]}}
	]}`
	f := newFakeEndpoint(t, replyWith(body))
	c := newTestClient(t, f.server.URL, time.Second)

	reply, err := c.GenerateReply(context.Background(), twoMessages)
	require.NoError(t, err)
	assert.Equal(t, "foobarbaz!", reply)
}

func TestGenerateReply_NoChoices(t *testing.T) {
	f := newFakeEndpoint(t, replyWith(`{"choices":[]}`))
	c := newTestClient(t, f.server.URL, time.Second)

	_, err := c.GenerateReply(context.Background(), twoMessages)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindNoChoices, reqErr.Kind)
	assert.Contains(t, err.Error(), "no choices returned")
}

func TestGenerateReply_EmptyContentUsesFallback(t *testing.T) {
	for _, content := range []string{`"   \n "`, `null`, `[]`, `[{"text":""}]`} {
		t.Run(content, func(t *testing.T) {
			f := newFakeEndpoint(t, replyWith(`{"choices":[{"message":{"content":`+content+`}}]}`))
			c := newTestClient(t, f.server.URL, time.Second)

			reply, err := c.GenerateReply(context.Background(), twoMessages)
			require.NoError(t, err)
			assert.Equal(t, FallbackReply, reply)
		})
	}
}

func TestGenerateReply_Timeout(t *testing.T) {
	release := make(chan struct{})
	f := newFakeEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c := newTestClient(t, f.server.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := c.GenerateReply(context.Background(), twoMessages)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.True(t, reqErr.Timeout())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerateReply_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error_code":"INTERNAL"}`, http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed body", replyWith(`{"choices":`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeEndpoint(t, tt.handler)
			c := newTestClient(t, f.server.URL, time.Second)

			_, err := c.GenerateReply(context.Background(), twoMessages)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, KindTransport, reqErr.Kind)
			assert.NotNil(t, errors.Cause(err))
			assert.Equal(t, int32(1), f.calls.Load(), "no retries")
		})
	}
}

func TestGenerateReply_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := newTestClient(t, url, time.Second)

	_, err := c.GenerateReply(context.Background(), twoMessages)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, KindTransport, reqErr.Kind)
}

func TestNewCompletionClient_Validation(t *testing.T) {
	valid := CompletionConfig{Token: "t", BaseURL: "https://x.example/api/", Model: "m", MaxTokens: 1, Timeout: time.Second}
	c, err := NewCompletionClient(valid)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/api/chat/completions", c.Endpoint())
	assert.Equal(t, "m", c.Model())

	for name, mutate := range map[string]func(*CompletionConfig){
		"token":   func(c *CompletionConfig) { c.Token = "" },
		"url":     func(c *CompletionConfig) { c.BaseURL = "not a url" },
		"model":   func(c *CompletionConfig) { c.Model = "" },
		"tokens":  func(c *CompletionConfig) { c.MaxTokens = 0 },
		"timeout": func(c *CompletionConfig) { c.Timeout = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			_, err := NewCompletionClient(cfg)
			assert.Error(t, err)
		})
	}
}

func TestRequestErrorKindString(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "kind(99)", ErrorKind(99).String())
}
