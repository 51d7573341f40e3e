package elevenlabs

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

func TestSynthesize(t *testing.T) {
	audio := []byte{0xff, 0xfb, 0x90, 0x00} // MP3 frame header

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text-to-speech/pNInz6obpgDQGcFmaJgB", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))

		var req synthesisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "مرحبا! كيفك اليوم؟", req.Text)
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	got, err := c.Synthesize(context.Background(), "مرحبا! كيفك اليوم؟")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestSynthesize_CustomVoice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/custom-voice", r.URL.Path)
		w.Write([]byte("audio")) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL), WithVoiceID("custom-voice"))
	_, err := c.Synthesize(context.Background(), "أهلاً")
	require.NoError(t, err)
}

func TestSynthesize_TransientStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Synthesize(context.Background(), "أهلاً")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSynthesize_PermanentStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	_, err := c.Synthesize(context.Background(), "أهلاً")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "unexpected status 404")
}
