package genai

import (
	"context"
	"fmt"
	"strings"
)

// MockClient produces deterministic local replies when no API key is
// configured. It lets signup, login, and the chat loop run end to end
// without the hosted provider.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Generate(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	// Only the system instruction so far: this is the opening of a session.
	if len(req.Contents) <= 1 {
		return Response{Text: "Hello! I'm your screening assistant. " +
			"Could you start by telling me your full name? " +
			"(You can type \"exit\" or \"quit\" at any time to end the session.)"}, nil
	}

	last := req.Contents[len(req.Contents)-1]
	input := ""
	if len(last.Parts) > 0 {
		input = strings.TrimSpace(last.Parts[0])
	}
	if input == "" {
		return Response{Text: "I didn't catch that - could you repeat it?"}, nil
	}

	lowered := strings.ToLower(input)
	if lowered == "exit" || lowered == "quit" {
		return Response{Text: "Thank you for your time! Your information has been recorded " +
			"and the hiring team will be in touch about the next steps. Goodbye!"}, nil
	}

	return Response{Text: fmt.Sprintf("Thanks, noted: %s. Let's continue with the next question.", input)}, nil
}
