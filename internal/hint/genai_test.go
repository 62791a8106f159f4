package hint

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		payload, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(payload), "Bug Explanation")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestGenerator(t *testing.T, srv *httptest.Server) *GenAIGenerator {
	t.Helper()
	gen, err := NewGenAIGenerator(context.Background(), GenAIOptions{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return gen
}

func TestGenAIGeneratorGenerate(t *testing.T) {
	srv, calls := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Count your loop iterations."}]},"finishReason":"STOP"}]}`)
	gen := newTestGenerator(t, srv)

	prompt := BuildPrompt(StyleBasic, records("bug-1")[0])
	text, err := gen.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "Count your loop iterations.", strings.TrimSpace(text))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "gemini-test", gen.Model())
}

func TestGenAIGeneratorRateLimited(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`)
	gen := newTestGenerator(t, srv)

	_, err := gen.Generate(context.Background(), BuildPrompt(StyleBasic, records("bug-1")[0]))
	require.Error(t, err)
	assert.True(t, IsRateLimited(err), "got %v", err)
}

func TestGenAIGeneratorServerError(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`)
	gen := newTestGenerator(t, srv)

	_, err := gen.Generate(context.Background(), BuildPrompt(StyleBasic, records("bug-1")[0]))
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "GenAI generate failed")
}

func TestNewGenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenAIGenerator(context.Background(), GenAIOptions{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewGenAIGeneratorDefaultModel(t *testing.T) {
	gen, err := NewGenAIGenerator(context.Background(), GenAIOptions{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, gen.Model())
}
