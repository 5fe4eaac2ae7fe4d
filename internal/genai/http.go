package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/reliability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"

	maxAttempts  = 3
	retryBase    = 250 * time.Millisecond
	retryCeiling = 2 * time.Second
)

// safetySettings is the fixed multi-category threshold applied uniformly to
// every request.
var safetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// HTTPClient calls the Gemini generateContent REST endpoint.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewHTTPClient(apiKey, model, baseURL string) *HTTPClient {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type generateRequest struct {
	Contents       []wireContent   `json:"contents"`
	SafetySettings []safetySetting `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []wirePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	contents := make([]wireContent, 0, len(req.Contents))
	for _, t := range req.Contents {
		wc := wireContent{Role: t.Role}
		for _, p := range t.Parts {
			wc.Parts = append(wc.Parts, wirePart{Text: p})
		}
		contents = append(contents, wc)
	}

	payload, err := json.Marshal(generateRequest{
		Contents:       contents,
		SafetySettings: safetySettings,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var parsed generateResponse
	if err := c.post(ctx, url, payload, &parsed); err != nil {
		return Response{}, err
	}

	if len(parsed.Candidates) == 0 {
		reason := strings.TrimSpace(parsed.PromptFeedback.BlockReason)
		if reason == "" {
			reason = "Not specified"
		}
		return Response{BlockReason: reason}, nil
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return Response{Text: sb.String()}, nil
}

// post sends the payload, retrying rate limits and upstream server errors
// with capped backoff. A non-retryable status fails immediately.
func (c *HTTPClient) post(ctx context.Context, url string, payload []byte, out *generateResponse) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(reliability.ExponentialBackoff(attempt-1, retryBase, retryCeiling))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		res, err := c.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("send request: %w", err)
			continue
		}

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
			res.Body.Close()
			lastErr = fmt.Errorf("genai http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
			if !reliability.IsRetryableHTTPStatus(res.StatusCode) {
				return lastErr
			}
			continue
		}

		err = json.NewDecoder(res.Body).Decode(out)
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return lastErr
}
