package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"reikningar/internal/core"
)

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://localhost:11434/api/generate"
	DefaultOllamaModel = "gemma3:12b"
)

// OllamaCompleter calls a local Ollama generate endpoint and concatenates the
// streamed response fragments.
type OllamaCompleter struct {
	URL    string
	Model  string
	Client *http.Client
}

// NewOllamaCompleter builds a completer with a pooled HTTP client. timeout
// bounds a whole generation.
func NewOllamaCompleter(url, model string, timeout time.Duration) *OllamaCompleter {
	if url == "" {
		url = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaCompleter{URL: url, Model: model, Client: newHTTPClient(timeout)}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		// Local models may take long before the first token.
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (c *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: c.Model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build ollama request: %v", core.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama request: %v", core.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: ollama returned %d: %s", core.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return readOllamaStream(resp.Body)
}

// readOllamaStream concatenates the response field of every JSON line in order.
func readOllamaStream(r io.Reader) (string, error) {
	var out strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("%w: decode ollama stream: %v", core.ErrExternalService, err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("%w: ollama: %s", core.ErrExternalService, chunk.Error)
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%w: read ollama stream: %v", core.ErrExternalService, err)
	}
	return out.String(), nil
}
