package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/resilience"
)

const (
	defaultBaseURL  = "https://api.groq.com/openai/v1"
	defaultModel    = "whisper-large-v3-turbo"
	defaultLanguage = "ar"
)

// Transcriber converts candidate speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default Whisper model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithLanguage overrides the default transcription language hint.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	model    string
	language string
	http     *http.Client
}

// NewClient creates a Groq Whisper transcription client.
func NewClient(apiKey string, opts ...Option) Transcriber {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		model:    defaultModel,
		language: defaultLanguage,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends an audio chunk to POST /audio/transcriptions and returns
// the recognized text. Empty audio yields an empty transcript, not an error:
// silence is a normal occurrence in a live interview.
func (c *httpClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", eris.Wrap(err, "groq: create form file")
	}
	if _, err := part.Write(audio); err != nil {
		return "", eris.Wrap(err, "groq: write audio")
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return "", eris.Wrap(err, "groq: write model field")
	}
	if err := mw.WriteField("language", c.language); err != nil {
		return "", eris.Wrap(err, "groq: write language field")
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", eris.Wrap(err, "groq: write response_format field")
	}
	if err := mw.Close(); err != nil {
		return "", eris.Wrap(err, "groq: close multipart writer")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", eris.Wrap(err, "groq: create request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "groq: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "groq: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("groq: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "groq: unmarshal response")
	}

	return result.Text, nil
}
