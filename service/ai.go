package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ankitupadhyayx/medicollab-backend/config"
	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// AIClient is the external AI collaborator: record text in, summary out.
// A failure means "no annotation available", never an error that may
// fail an enclosing mutation.
type AIClient interface {
	Summarize(ctx context.Context, rec *model.Record) (*model.AIAnnotation, error)
}

// HTTPAIClient calls the summarization API over HTTP.
type HTTPAIClient struct {
	config     *config.AIConfig
	httpClient *http.Client
}

func NewHTTPAIClient(cfg *config.AIConfig) *HTTPAIClient {
	return &HTTPAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type aiSummarizeRequest struct {
	Model       string   `json:"model,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	RecordType  string   `json:"record_type"`
	Attachments []string `json:"attachments,omitempty"`
}

type aiSummarizeResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		Summary     string   `json:"summary"`
		KeyFindings []string `json:"key_findings"`
		Severity    string   `json:"severity"`
	} `json:"data"`
}

func (c *HTTPAIClient) Summarize(ctx context.Context, rec *model.Record) (*model.AIAnnotation, error) {
	names := make([]string, len(rec.Attachments))
	for i, att := range rec.Attachments {
		names[i] = att.OriginalName
	}

	reqBody := aiSummarizeRequest{
		Model:       c.config.Model,
		Title:       rec.Title,
		Description: rec.Description,
		RecordType:  string(rec.RecordType),
		Attachments: names,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL+"/v1/summarize", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarize API returned status %d", resp.StatusCode)
	}

	var result aiSummarizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("summarize API error: %s", result.Message)
	}

	severity := model.Severity(result.Data.Severity)
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
	default:
		severity = model.SeverityLow
	}

	return &model.AIAnnotation{
		Summary:     result.Data.Summary,
		KeyFindings: result.Data.KeyFindings,
		Severity:    severity,
	}, nil
}
