// Package hf provides a client for Hugging Face inference endpoints
// covering text classification, zero-shot classification and
// summarization.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	summaryMaxLength = 150
	summaryMinLength = 30
)

// Client calls Hugging Face hosted inference models over REST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	toxicityModel       string
	classificationModel string
	summarizationModel  string
}

// Config holds the Hugging Face client settings.
type Config struct {
	Token               string
	BaseURL             string
	ToxicityModel       string
	ClassificationModel string
	SummarizationModel  string
}

// NewClient creates a Hugging Face inference client.
func NewClient(cfg *Config) *Client {
	return &Client{
		httpClient:          &http.Client{Timeout: 30 * time.Second},
		baseURL:             cfg.BaseURL,
		token:               cfg.Token,
		toxicityModel:       cfg.ToxicityModel,
		classificationModel: cfg.ClassificationModel,
		summarizationModel:  cfg.SummarizationModel,
	}
}

// ClassifyText runs text classification and returns per-label scores.
func (c *Client) ClassifyText(ctx context.Context, text string) ([]domain.LabelScore, error) {
	body := map[string]any{"inputs": text}

	// Nested array: one inner array of label scores per input.
	var out [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := c.post(ctx, c.toxicityModel, body, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty classification response: %w", domain.ErrInferenceUnavailable)
	}

	scores := make([]domain.LabelScore, 0, len(out[0]))
	for _, s := range out[0] {
		scores = append(scores, domain.LabelScore{Label: s.Label, Score: s.Score})
	}
	return scores, nil
}

// ClassifyZeroShot scores the text against the candidate labels with
// multi-label inference.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error) {
	body := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": labels,
			"multi_label":      true,
		},
	}

	var out struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := c.post(ctx, c.classificationModel, body, &out); err != nil {
		return nil, err
	}
	if len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("mismatched zero-shot response: %w", domain.ErrInferenceUnavailable)
	}

	scores := make([]domain.LabelScore, 0, len(out.Labels))
	for i, label := range out.Labels {
		scores = append(scores, domain.LabelScore{Label: label, Score: out.Scores[i]})
	}
	return scores, nil
}

// Summarize produces an abstractive summary of the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	body := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": summaryMaxLength,
			"min_length": summaryMinLength,
		},
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := c.post(ctx, c.summarizationModel, body, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty summarization response: %w", domain.ErrInferenceUnavailable)
	}
	return out[0].SummaryText, nil
}

func (c *Client) post(ctx context.Context, model string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference request failed: %v: %w", err, domain.ErrInferenceTransient)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference API error %d for %s: %s: %w",
			resp.StatusCode, model, errDetail(data), classify(resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response for %s: %v: %w", model, err, domain.ErrInferenceUnavailable)
	}
	return nil
}

// classify maps an HTTP status to a transient or terminal failure.
// 503 covers the model cold-start case where retrying helps.
func classify(status int) error {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return domain.ErrInferenceTransient
	default:
		return domain.ErrInferenceUnavailable
	}
}

func errDetail(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(body)
}
