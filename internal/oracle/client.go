// Package oracle issues structured-extraction requests to the external
// text-generation service and decodes its replies into raw records.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bnc4vk/pap-data-population/internal/observability"
	"github.com/bnc4vk/pap-data-population/internal/retry"
)

type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Retry     retry.Config
}

func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		MaxTokens: 8192,
		Timeout:   120 * time.Second,
		Retry:     retry.DefaultConfig(),
	}
}

// Client talks to an OpenAI-compatible chat-completions endpoint through
// the backoff retrier. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retrier    *retry.Retrier
}

func NewClient(cfg Config) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retrier:    retry.New(cfg.Retry),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Query asks the oracle for one record per (substance, country) pair it
// has information on, across all given substances and countries, and
// returns the raw record list for normalization downstream.
func (c *Client) Query(ctx context.Context, substances, countries []string) ([]json.RawMessage, error) {
	payload, err := c.buildPayload(substances, countries)
	if err != nil {
		return nil, fmt.Errorf("build oracle payload: %w", err)
	}

	var content string
	attempts := 0
	err = c.retrier.Do(ctx, "oracle query", func() error {
		attempts++
		reply, err := c.post(ctx, payload)
		if err != nil {
			if retry.IsTransient(err) {
				observability.RecordOracleRequest(observability.OutcomeTransient)
			} else {
				observability.RecordOracleRequest(observability.OutcomeFatal)
			}
			return err
		}
		observability.RecordOracleRequest(observability.OutcomeOK)
		content = reply
		return nil
	})
	observability.RecordOracleRetries(attempts - 1)
	if err != nil {
		return nil, err
	}

	records, err := parseRecords(content)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("substances", len(substances)).
		Int("countries", len(countries)).
		Int("records", len(records)).
		Msg("oracle reply decoded")

	return records, nil
}

func (c *Client) buildPayload(substances, countries []string) ([]byte, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(substances, countries)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: 0.1,
	}
	return json.Marshal(req)
}

// post performs one HTTP attempt and returns the reply content.
func (c *Client) post(ctx context.Context, payload []byte) (string, error) {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var reply chatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("decode oracle envelope: %w", err)
	}
	if reply.Error != nil {
		return "", fmt.Errorf("oracle API error: %s", reply.Error.Message)
	}
	if len(reply.Choices) == 0 {
		return "", ErrEmptyReply
	}

	content := strings.TrimSpace(reply.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
