// Package interview runs the scripted screening conversation: it owns the
// session's in-memory turn sequence and delegates text generation to the
// completion provider.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/genai"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/observability"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/session"
)

// DefaultStreamDelay mirrors the original UI's 15ms inter-word pause.
const DefaultStreamDelay = 15 * time.Millisecond

// ErrStartFailed signals that the opening turn yielded no usable text. The
// transcript is reset so the next interaction can retry.
var ErrStartFailed = errors.New("assistant could not start the conversation")

// DeltaFunc receives whitespace-preserving fragments of an assistant reply.
type DeltaFunc func(delta string) error

type Orchestrator struct {
	sessions    *session.Manager
	client      genai.Client
	metrics     *observability.Metrics
	log         logging.Logger
	streamDelay time.Duration
	callTimeout time.Duration
}

func NewOrchestrator(sessions *session.Manager, client genai.Client, metrics *observability.Metrics, log logging.Logger, streamDelay time.Duration) *Orchestrator {
	if streamDelay < 0 {
		streamDelay = DefaultStreamDelay
	}
	return &Orchestrator{
		sessions:    sessions,
		client:      client,
		metrics:     metrics,
		log:         logging.OrNop(log),
		streamDelay: streamDelay,
		callTimeout: 90 * time.Second,
	}
}

// Start opens a new screening when the transcript is empty: it sends the
// fixed system instruction and records the provider's greeting as the first
// model turn. A session with history is a no-op returning ("", false, nil).
//
// If the provider yields no usable text the transcript stays empty and
// ErrStartFailed is returned; the session can simply retry.
func (o *Orchestrator) Start(ctx context.Context, sessionID string) (string, bool, error) {
	transcript, err := o.sessions.Transcript(sessionID)
	if err != nil {
		return "", false, err
	}
	if len(transcript) > 0 {
		return "", false, nil
	}

	opening := []account.ConversationTurn{{Role: account.RoleUser, Parts: []string{SystemInstruction}}}
	resp, err := o.generate(ctx, opening)
	if err != nil || resp.Blocked() || resp.Text == "" {
		o.countProviderFailure(resp, err)
		o.log.Warn(ctx, "screening could not start", "session_id", sessionID, "err", err, "block_reason", resp.BlockReason)
		// Leave the transcript empty; the next connection retries.
		return "", false, ErrStartFailed
	}

	transcript = append(opening, account.ConversationTurn{Role: account.RoleModel, Parts: []string{resp.Text}})
	if err := o.sessions.SetTranscript(sessionID, transcript); err != nil {
		return "", false, err
	}
	return resp.Text, true, nil
}

// Turn appends the candidate's input, asks the provider for the next reply
// given the whole transcript, and appends that reply as a model turn. The
// reply is then streamed word by word to onDelta.
//
// Provider failures never surface: they degrade to a fixed placeholder
// recorded as the model's turn, and the session continues.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, input string, onDelta DeltaFunc) (string, error) {
	started := time.Now()

	transcript, err := o.sessions.Transcript(sessionID)
	if err != nil {
		return "", err
	}

	transcript = append(transcript, account.ConversationTurn{Role: account.RoleUser, Parts: []string{input}})

	resp, genErr := o.generate(ctx, transcript)
	reply := resp.Text
	switch {
	case genErr != nil:
		if ctx.Err() != nil {
			// Session teardown cancelled the call; don't record a turn.
			return "", ctx.Err()
		}
		o.countProviderFailure(resp, genErr)
		o.log.Error(ctx, "completion call failed", "session_id", sessionID, "err", genErr)
		reply = placeholderError
	case resp.Blocked():
		o.countProviderFailure(resp, nil)
		o.log.Warn(ctx, "completion blocked", "session_id", sessionID, "reason", resp.BlockReason)
		reply = fmt.Sprintf(placeholderBlocked, resp.BlockReason)
	case reply == "":
		o.countProviderFailure(resp, nil)
		reply = placeholderEmpty
	}

	transcript = append(transcript, account.ConversationTurn{Role: account.RoleModel, Parts: []string{reply}})
	if err := o.sessions.SetTranscript(sessionID, transcript); err != nil {
		return "", err
	}

	if o.metrics != nil {
		o.metrics.ObserveTurnLatency(time.Since(started))
	}

	if err := streamWords(ctx, reply, o.streamDelay, onDelta); err != nil {
		return reply, err
	}
	return reply, nil
}

func (o *Orchestrator) generate(ctx context.Context, transcript []account.ConversationTurn) (genai.Response, error) {
	contents := make([]genai.Content, 0, len(transcript))
	for _, t := range transcript {
		contents = append(contents, genai.Content{Role: t.Role, Parts: t.Parts})
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return o.client.Generate(callCtx, genai.Request{Contents: contents})
}

func (o *Orchestrator) countProviderFailure(resp genai.Response, err error) {
	if o.metrics == nil {
		return
	}
	switch {
	case err != nil:
		o.metrics.ProviderErrors.WithLabelValues("transport").Inc()
	case resp.Blocked():
		o.metrics.ProviderErrors.WithLabelValues("safety_block").Inc()
	default:
		o.metrics.ProviderErrors.WithLabelValues("empty").Inc()
	}
}
