package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Generator is the interface for the text generation backend
type Generator interface {
	// Generate returns the full completion for a prompt
	Generate(ctx context.Context, prompt string) (string, error)
	// Stream calls fn for each token as it arrives
	Stream(ctx context.Context, prompt string, fn func(token string) error) error
	// Available reports whether the backend answers a probe
	Available(ctx context.Context) bool
	// Models lists the models the backend has loaded
	Models(ctx context.Context) ([]string, error)
}

// Ollama implements Generator against a local Ollama server
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type OllamaOption func(*Ollama)

// WithOllamaModel sets the model used for generation
func WithOllamaModel(model string) OllamaOption {
	return func(x *Ollama) {
		x.model = model
	}
}

// WithOllamaHTTPClient replaces the HTTP client, mainly for tests
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(x *Ollama) {
		x.httpClient = client
	}
}

// WithOllamaTimeout bounds one generation call end to end, including
// streaming. Apply after WithOllamaHTTPClient when both are used.
func WithOllamaTimeout(d time.Duration) OllamaOption {
	return func(x *Ollama) {
		x.httpClient.Timeout = d
	}
}

// NewOllama creates a new Ollama adapter for the server at baseURL,
// e.g. http://localhost:11434.
func NewOllama(baseURL string, opts ...OllamaOption) *Ollama {
	x := &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   "llama3.2:3b",
		httpClient: &http.Client{
			// Local generation of a long reply can legitimately take minutes
			Timeout: 120 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

// Model returns the configured generation model name
func (x *Ollama) Model() string {
	return x.model
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (x *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := x.post(ctx, "/api/generate", generateRequest{
		Model:  x.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var chunk generateChunk
	if err := json.NewDecoder(body).Decode(&chunk); err != nil {
		return "", goerr.Wrap(err, "failed to decode generate response")
	}

	return chunk.Response, nil
}

func (x *Ollama) Stream(ctx context.Context, prompt string, fn func(token string) error) error {
	body, err := x.post(ctx, "/api/generate", generateRequest{
		Model:  x.model,
		Prompt: prompt,
		Stream: true,
	})
	if err != nil {
		return err
	}
	defer body.Close()

	// Chunks arrive as one JSON object per line
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return goerr.Wrap(err, "failed to decode stream chunk")
		}

		if chunk.Response != "" {
			if err := fn(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read stream")
	}

	return nil
}

func (x *Ollama) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := x.tags(ctx)
	return err == nil
}

func (x *Ollama) Models(ctx context.Context) ([]string, error) {
	tags, err := x.tags(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (x *Ollama) tags(ctx context.Context) (*tagsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("ollama API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tags response")
	}

	return &tags, nil
}

func (x *Ollama) post(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, goerr.New("ollama API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	return resp.Body, nil
}
