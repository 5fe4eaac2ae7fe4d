// Package genai adapts the hosted text-completion provider. The rest of the
// service only sees Client: an ordered turn sequence in, text (or a block
// reason) out.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Content is one turn of the request, in the provider's wire shape.
type Content struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

// Request is the full conversation so far, oldest turn first.
type Request struct {
	Contents []Content
}

// Response carries the generated text. When the provider withholds every
// candidate, Text is empty and BlockReason names the safety category (or
// "Not specified").
type Response struct {
	Text        string
	BlockReason string
}

// Blocked reports whether the provider refused to answer.
func (r Response) Blocked() bool { return r.BlockReason != "" }

// Client is a synchronous completion call. Implementations must honor ctx
// cancellation; transient transport failures may be retried internally but a
// returned error is final.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Config controls client construction.
type Config struct {
	Mode    string // auto | http | mock
	APIKey  string
	Model   string
	BaseURL string
}

func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewHTTPClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
		}
		return NewMockClient(), nil
	case "http":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("genai http mode requires an API key")
		}
		return NewHTTPClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("invalid genai mode %q (expected auto|http|mock)", cfg.Mode)
	}
}
