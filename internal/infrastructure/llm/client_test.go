package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"ae-triage-intake/config"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func chatEnvelope(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{"message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func newTestClient(serverURL, apiKey string) ReasoningClient {
	return NewReasoningClient(config.ReasoningConfig{
		APIKey:      apiKey,
		BaseURL:     serverURL,
		Model:       "test-model",
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}, newTestLogger())
}

func TestSuggest(t *testing.T) {
	t.Run("Missing API Key", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "").Suggest(context.Background(), "prompt")

		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Equal(t, int32(0), calls.Load(), "no request should be made without a key")
	})

	t.Run("Request Shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			assert.Equal(t, 0.2, req.Temperature)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, SystemInstruction, req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "the intake", req.Messages[1].Content)

			w.Write([]byte(chatEnvelope(`{"triage_category":"Urgent"}`)))
		}))
		defer server.Close()

		obj, err := newTestClient(server.URL+"/", "sk-test").Suggest(context.Background(), "the intake")
		require.NoError(t, err)
		assert.Equal(t, "Urgent", obj["triage_category"])
	})

	t.Run("Fenced JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatEnvelope("Here you go:\n```json\n{\"summary\":\"ok\",\"red_flags\":[]}\n```")))
		}))
		defer server.Close()

		obj, err := newTestClient(server.URL, "sk-test").Suggest(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "ok", obj["summary"])
	})

	t.Run("Non 2xx Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(strings.Repeat("x", 2000)))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "sk-test").Suggest(context.Background(), "p")

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr), "should be a transport error")
		assert.Equal(t, http.StatusTooManyRequests, transportErr.StatusCode)
		assert.LessOrEqual(t, len(transportErr.Body), maxErrorBodyBytes+3, "body should be truncated")
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("Connection Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(url, "sk-test").Suggest(context.Background(), "p")

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, 0, transportErr.StatusCode)
	})

	t.Run("Content Without JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatEnvelope("I cannot help with that.")))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "sk-test").Suggest(context.Background(), "p")

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed), "should be a malformed response error")
		assert.Equal(t, "I cannot help with that.", malformed.Content)
	})

	t.Run("Empty Choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "sk-test").Suggest(context.Background(), "p")

		var malformed *MalformedResponseError
		assert.True(t, errors.As(err, &malformed))
	})

	t.Run("Envelope Not JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway</html>"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, "sk-test").Suggest(context.Background(), "p")

		var malformed *MalformedResponseError
		assert.True(t, errors.As(err, &malformed))
	})
}

func TestExtractJSONObject(t *testing.T) {
	t.Run("Plain Object", func(t *testing.T) {
		obj, err := ExtractJSONObject(`{"a":1}`)
		require.NoError(t, err)
		assert.Equal(t, 1.0, obj["a"])
	})

	t.Run("Surrounding Prose", func(t *testing.T) {
		obj, err := ExtractJSONObject("Sure! {\"a\":\"b\"} Hope this helps.")
		require.NoError(t, err)
		assert.Equal(t, "b", obj["a"])
	})

	t.Run("Braces Inside Strings", func(t *testing.T) {
		obj, err := ExtractJSONObject(`{"summary":"uses {curly} braces","n":{"x":true}}`)
		require.NoError(t, err)
		assert.Equal(t, "uses {curly} braces", obj["summary"])
	})

	t.Run("Trailing Braces After Object", func(t *testing.T) {
		obj, err := ExtractJSONObject(`{"a":"}"} and then a stray }`)
		require.NoError(t, err, "balanced scan should recover the first object")
		assert.Equal(t, "}", obj["a"])
	})

	t.Run("No Braces", func(t *testing.T) {
		_, err := ExtractJSONObject("nothing here")
		assert.ErrorIs(t, err, errNoJSONObject)
	})

	t.Run("Unparseable Object", func(t *testing.T) {
		_, err := ExtractJSONObject(`{not json}`)
		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("Short Input Untouched", func(t *testing.T) {
		assert.Equal(t, "abc", truncate("abc", 5))
	})

	t.Run("ASCII Cut", func(t *testing.T) {
		assert.Equal(t, "abc...", truncate("abcdef", 3))
	})

	t.Run("Keeps Runes Whole", func(t *testing.T) {
		// "é" is two bytes; a cut at byte 2 would land inside it.
		got := truncate("aéb", 2)
		assert.Equal(t, "a...", got)
		assert.True(t, utf8.ValidString(got))

		body := strings.Repeat("€", maxErrorBodyBytes)
		got = truncate(body, maxErrorBodyBytes)
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), maxErrorBodyBytes+len("..."))
	})
}
