package adapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/thebardchat/angel-cloud/pkg/adapter"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/api/generate")
		gt.Equal(t, r.Method, http.MethodPost)

		var req map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gt.V(t, req["model"]).Equal("test-model")
		gt.V(t, req["stream"]).Equal(false)
		gt.S(t, req["prompt"].(string)).Contains("hello")

		fmt.Fprintln(w, `{"response":"Hi there. How can I help?","done":true}`)
	}))
	defer srv.Close()

	ollama := adapter.NewOllama(srv.URL, adapter.WithOllamaModel("test-model"))

	reply, err := ollama.Generate(context.Background(), "hello")
	gt.NoError(t, err)
	gt.Equal(t, reply, "Hi there. How can I help?")
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	ollama := adapter.NewOllama(srv.URL)

	_, err := ollama.Generate(context.Background(), "hello")
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("ollama API returned error")
}

func TestOllamaStream(t *testing.T) {
	chunks := []string{
		`{"response":"Hello","done":false}`,
		`{"response":" from","done":false}`,
		`{"response":" the stream","done":false}`,
		`{"done":true}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		gt.True(t, ok)
		for _, chunk := range chunks {
			fmt.Fprintln(w, chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	ollama := adapter.NewOllama(srv.URL)

	var tokens []string
	err := ollama.Stream(context.Background(), "hello", func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	gt.NoError(t, err)
	gt.A(t, tokens).Length(3)
	gt.Equal(t, strings.Join(tokens, ""), "Hello from the stream")
}

func TestOllamaStreamCallbackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first","done":false}`)
		fmt.Fprintln(w, `{"response":"second","done":false}`)
		fmt.Fprintln(w, `{"done":true}`)
	}))
	defer srv.Close()

	ollama := adapter.NewOllama(srv.URL)

	calls := 0
	err := ollama.Stream(context.Background(), "hello", func(token string) error {
		calls++
		return fmt.Errorf("stop here")
	})
	gt.Error(t, err)
	gt.Equal(t, calls, 1)
}

func TestOllamaAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/api/tags")
		fmt.Fprintln(w, `{"models":[{"name":"llama3.2:3b"},{"name":"mistral:7b"}]}`)
	}))

	ollama := adapter.NewOllama(srv.URL)
	gt.True(t, ollama.Available(context.Background()))

	models, err := ollama.Models(context.Background())
	gt.NoError(t, err)
	gt.A(t, models).Length(2)
	gt.Equal(t, models[0], "llama3.2:3b")

	// A closed server must report unavailable, not error out
	srv.Close()
	gt.False(t, ollama.Available(context.Background()))
}

func TestOllamaDefaults(t *testing.T) {
	ollama := adapter.NewOllama("http://localhost:11434/")
	gt.Equal(t, ollama.Model(), "llama3.2:3b")
}
