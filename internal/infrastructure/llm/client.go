package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ae-triage-intake/config"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// SystemInstruction is sent as the system role on every call.
const SystemInstruction = "You are an experienced NHS A&E triage assistant. Respond with ONLY valid JSON and keep it concise, safe, and professional."

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultBaseURL     = "https://api.openai.com/v1"
)

// ReasoningClient sends a triage request to the completion backend and
// returns the JSON object embedded in its answer. Field presence is not
// checked here.
type ReasoningClient interface {
	Suggest(ctx context.Context, prompt string) (map[string]interface{}, error)
}

type chatClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
	log         *logrus.Logger
}

func NewReasoningClient(cfg config.ReasoningConfig, log *logrus.Logger) ReasoningClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &chatClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Suggest makes exactly one call. No retries.
func (c *chatClient) Suggest(ctx context.Context, prompt string) (map[string]interface{}, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"model":    c.model,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Reasoning backend responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBodyBytes),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &MalformedResponseError{Reason: "response envelope is not JSON", Content: truncate(string(body), maxErrorBodyBytes), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &MalformedResponseError{Reason: "response has no choices"}
	}

	content := parsed.Choices[0].Message.Content
	obj, err := ExtractJSONObject(content)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "no parseable JSON object in content", Content: truncate(content, maxErrorBodyBytes), Err: err}
	}

	return obj, nil
}
