package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldencrust/interview-agent/internal/resilience"
)

func TestTranscribe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3-turbo", r.FormValue("model"))
		assert.Equal(t, "ar", r.FormValue("language"))
		assert.Equal(t, "json", r.FormValue("response_format"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"text": "عندي خمس سنين خبرة بالمخابز",
		})
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	text, err := c.Transcribe(context.Background(), []byte{0x1a, 0x45, 0xdf, 0xa3})
	require.NoError(t, err)
	assert.Equal(t, "عندي خمس سنين خبرة بالمخابز", text)
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("empty audio must not reach the API")
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	text, err := c.Transcribe(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestTranscribe_TransientStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Transcribe(context.Background(), []byte("audio"))
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestTranscribe_PermanentStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Transcribe(context.Background(), []byte("audio"))
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "unexpected status 401")
}

func TestTranscribe_Options(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"}) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL), WithModel("whisper-large-v3"), WithLanguage("en"))
	text, err := c.Transcribe(context.Background(), []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
