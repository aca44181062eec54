package llama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/pkg/config"
)

// Client talks to a local llama.cpp server over HTTP. The server owns the
// GGUF model; this client only warms it up once and sends completion
// requests with the configured sampling parameters.
type Client struct {
	baseURL       string
	modelPath     string
	temperature   float64
	topP          float64
	repeatPenalty float64
	maxTokens     int
	httpClient    *http.Client

	mu    sync.Mutex
	ready bool
}

// NewClient creates a new llama.cpp server client. The model is not loaded
// here; the first completion call triggers the warm-up probe.
func NewClient(cfg *config.LlamaConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("llama base URL is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		modelPath:     cfg.ModelPath,
		temperature:   cfg.Temperature,
		topP:          cfg.TopP,
		repeatPenalty: cfg.RepeatPenalty,
		maxTokens:     maxTokens,
		httpClient: &http.Client{
			// Local CPU inference is slow; the real bound on a completion
			// is the token cap, this only catches a wedged server.
			Timeout: 2 * time.Minute,
		},
	}, nil
}

type completionRequest struct {
	Prompt        string  `json:"prompt"`
	NPredict      int     `json:"n_predict"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	CachePrompt   bool    `json:"cache_prompt"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Complete sends a prompt to the llama.cpp server and returns the raw
// completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.ensureReady(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(completionRequest{
		Prompt:        prompt,
		NPredict:      c.maxTokens,
		Temperature:   c.temperature,
		TopP:          c.topP,
		RepeatPenalty: c.repeatPenalty,
		CachePrompt:   true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completion", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordLlamaMetric(ctx, c.modelPath, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("llama request failed with status %d", resp.StatusCode)
		recordLlamaMetric(ctx, c.modelPath, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var envelope completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordLlamaMetric(ctx, c.modelPath, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if envelope.Content == "" {
		err := errors.New("llama response missing content")
		recordLlamaMetric(ctx, c.modelPath, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	recordLlamaMetric(ctx, c.modelPath, resp.StatusCode, time.Since(start), nil)
	return envelope.Content, nil
}

// ensureReady performs the warm-up probe exactly once per successful load.
// The mutex guards against concurrent first calls racing the warm-up; a
// failed warm-up is retried on the next completion.
func (c *Client) ensureReady(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}
	if err := c.warmUp(ctx); err != nil {
		return err
	}
	c.ready = true
	return nil
}

// warmUp probes the server's health endpoint until the model is loaded.
// llama-server answers 503 while the model is still being read from disk.
func (c *Client) warmUp(ctx context.Context) error {
	log.Info().Str("model", c.modelPath).Msg("warming up llama.cpp server")
	start := time.Now()

	deadline := time.Now().Add(90 * time.Second)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err == nil {
			status := resp.StatusCode
			resp.Body.Close()
			if status == http.StatusOK {
				log.Info().Dur("took", time.Since(start)).Msg("llama.cpp server ready")
				return nil
			}
			err = fmt.Errorf("llama health check returned status %d", status)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("llama server not ready: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}
