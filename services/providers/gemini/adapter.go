// Package gemini talks to the Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/gemini-chat/backend/services/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	providerName   = "gemini"
	apiKeyHeader   = "x-goog-api-key"
)

var knownModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-2.0-flash",
	"gemini-pro",
}

// Adapter implements the Provider interface for Google Gemini
type Adapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
	models     map[string]struct{}
}

// NewAdapter creates a new Gemini adapter
func NewAdapter(config providers.ProviderConfig) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	models := make(map[string]struct{}, len(knownModels)+1)
	for _, model := range knownModels {
		models[model] = struct{}{}
	}
	models[config.Model] = struct{}{}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		models: models,
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return providerName
}

// DefaultModel returns the configured model
func (a *Adapter) DefaultModel() string {
	return a.config.Model
}

// ChatCompletion sends the conversation to generateContent and returns the
// concatenated text of the first candidate. A blocked prompt, a response
// without candidates and a first candidate without text are errors.
func (a *Adapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = a.config.Model
	}
	if err := a.ValidateModel(model); err != nil {
		return nil, providers.NewProviderError(a.Name(), "INVALID_MODEL", err.Error(), http.StatusBadRequest, err)
	}

	reqBody, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "MARSHAL_ERROR", "Failed to marshal request", 0, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", a.config.BaseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "REQUEST_ERROR", "Failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, a.config.APIKey)
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "READ_ERROR", "Failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var genResp GenerateContentResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "Failed to unmarshal response", httpResp.StatusCode, err)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		message := "prompt blocked: " + genResp.PromptFeedback.BlockReason
		return nil, providers.NewProviderError(a.Name(), "BLOCKED", message, httpResp.StatusCode, nil)
	}
	if len(genResp.Candidates) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "no candidates returned", httpResp.StatusCode, nil)
	}
	// Candidates stopped for SAFETY, RECITATION and similar reasons carry no parts.
	if first := genResp.Candidates[0]; !hasText(first) {
		if first.FinishReason == "" {
			return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "candidate has no text", httpResp.StatusCode, nil)
		}
		return nil, providers.NewProviderError(a.Name(), "BLOCKED", "response blocked: "+first.FinishReason, httpResp.StatusCode, nil)
	}

	return a.convertToUnifiedResponse(&genResp, model, time.Since(startTime)), nil
}

// IsAvailable checks that the configured model can be looked up with the API key
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	endpoint := fmt.Sprintf("%s/models/%s", a.config.BaseURL, url.PathEscape(a.config.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set(apiKeyHeader, a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ValidateModel checks if a model is supported
func (a *Adapter) ValidateModel(model string) error {
	if _, exists := a.models[model]; !exists {
		return fmt.Errorf("model %s is not supported by Gemini provider", model)
	}
	return nil
}

// buildRequest maps unified messages onto Gemini contents. System messages
// go to systemInstruction and "assistant" becomes "model".
func buildRequest(req *providers.ChatRequest) *GenerateContentRequest {
	genReq := &GenerateContentRequest{}

	var system []Part
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			system = append(system, Part{Text: msg.Content})
		case "assistant", "model":
			genReq.Contents = append(genReq.Contents, Content{Role: "model", Parts: []Part{{Text: msg.Content}}})
		default:
			genReq.Contents = append(genReq.Contents, Content{Role: "user", Parts: []Part{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		genReq.SystemInstruction = &Content{Parts: system}
	}

	return genReq
}

func hasText(candidate Candidate) bool {
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return true
		}
	}
	return false
}

// convertToUnifiedResponse converts a Gemini response to unified format
func (a *Adapter) convertToUnifiedResponse(genResp *GenerateContentResponse, model string, latency time.Duration) *providers.ChatResponse {
	if genResp.ModelVersion != "" {
		model = genResp.ModelVersion
	}

	resp := &providers.ChatResponse{
		ID:       genResp.ResponseID,
		Model:    model,
		Provider: a.Name(),
		Choices:  make([]providers.Choice, len(genResp.Candidates)),
		Usage: providers.Usage{
			PromptTokens:     genResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: genResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      genResp.UsageMetadata.TotalTokenCount,
		},
		Latency: latency,
		Created: time.Now(),
	}

	for i, candidate := range genResp.Candidates {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		resp.Choices[i] = providers.Choice{
			Index: candidate.Index,
			Message: providers.Message{
				Role:    "assistant",
				Content: text.String(),
			},
			FinishReason: candidate.FinishReason,
		}
	}

	return resp
}

// handleErrorResponse handles Gemini error responses
func (a *Adapter) handleErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		message := fmt.Sprintf("unexpected status %d", statusCode)
		return providers.NewProviderError(a.Name(), "UNKNOWN_ERROR", message, statusCode, err)
	}

	return providers.NewProviderError(
		a.Name(),
		errResp.Error.Status,
		errResp.Error.Message,
		statusCode,
		errors.New(errResp.Error.Message),
	)
}

// Gemini-specific request/response types

type GenerateContentRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  UsageMetadata   `json:"usageMetadata"`
	ModelVersion   string          `json:"modelVersion"`
	ResponseID     string          `json:"responseId"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
	Index        int     `json:"index"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
