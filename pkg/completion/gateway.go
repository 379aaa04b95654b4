package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"documind-be/internal/pkg/logger"
	"documind-be/pkg/llm"
)

// Shape is a decoded JSON payload that can check itself. A Validate failure
// is treated exactly like a parse failure.
type Shape interface {
	Validate() error
}

const correctiveInstruction = "Your previous response was not valid. Respond again with ONLY the JSON object in the required format. No markdown fences, no commentary, no other text."

// Gateway is the single path to the completion service. It classifies
// provider failures into typed errors and owns the retry policy: one
// corrective retry on a malformed reply, nothing else. Upstream and auth
// failures pass through untouched on the first occurrence.
type Gateway struct {
	provider llm.LLMProvider
	logger   logger.ILogger // audit log, may be nil in tests
}

func NewGateway(provider llm.LLMProvider, auditLogger logger.ILogger) *Gateway {
	return &Gateway{
		provider: provider,
		logger:   auditLogger,
	}
}

// CompleteText runs a free-text completion (no JSON shape).
func (g *Gateway) CompleteText(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	start := time.Now()
	raw, err := g.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		cerr := g.classify(err)
		g.logFailure("text", time.Since(start), cerr)
		return "", cerr
	}
	g.logSuccess("text", time.Since(start), len(prompt), false)
	return strings.TrimSpace(raw), nil
}

// Complete runs a structured completion over a full message replay and
// decodes the reply into shape.
func (g *Gateway) Complete(ctx context.Context, messages []llm.Message, shape Shape, opts ...llm.Option) error {
	start := time.Now()

	raw, err := g.provider.Chat(ctx, messages, opts...)
	if err != nil {
		cerr := g.classify(err)
		g.logFailure("chat", time.Since(start), cerr)
		return cerr
	}

	decodeErr := decodeInto(raw, shape)
	if decodeErr == nil {
		g.logSuccess("chat", time.Since(start), promptChars(messages), false)
		return nil
	}

	// One corrective retry: replay the conversation with the bad reply and
	// an instruction naming the problem.
	if g.logger != nil {
		g.logger.Warn("completion", "malformed reply, issuing corrective retry", map[string]interface{}{
			"error":   decodeErr.Error(),
			"snippet": snippet(raw),
		})
	}

	corrective := make([]llm.Message, 0, len(messages)+2)
	corrective = append(corrective, messages...)
	corrective = append(corrective,
		llm.Message{Role: "model", Content: raw},
		llm.Message{Role: "user", Content: correctiveInstruction},
	)

	raw2, err2 := g.provider.Chat(ctx, corrective, opts...)
	if err2 != nil {
		cerr := g.classify(err2)
		g.logFailure("chat-retry", time.Since(start), cerr)
		return cerr
	}

	if decodeErr2 := decodeInto(raw2, shape); decodeErr2 != nil {
		cerr := &Error{Kind: KindMalformed, Detail: snippet(raw2), Err: decodeErr2}
		g.logFailure("chat-retry", time.Since(start), cerr)
		return cerr
	}

	g.logSuccess("chat", time.Since(start), promptChars(messages), true)
	return nil
}

// CompleteInto wraps a single prompt as one user message.
func (g *Gateway) CompleteInto(ctx context.Context, prompt string, shape Shape, opts ...llm.Option) error {
	return g.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, shape, opts...)
}

func (g *Gateway) classify(err error) error {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden {
			return &Error{
				Kind:   KindAuth,
				Detail: fmt.Sprintf("provider rejected credentials (status %d)", statusErr.Code),
				Err:    err,
			}
		}
		return &Error{
			Kind:   KindUpstream,
			Detail: fmt.Sprintf("provider returned status %d", statusErr.Code),
			Err:    err,
		}
	}
	return &Error{Kind: KindUpstream, Detail: "completion request failed", Err: err}
}

// CleanJSON strips the markdown fences models like to wrap JSON in, then
// falls back to the outermost brace pair when commentary leaks around it.
func CleanJSON(raw string) []byte {
	cleaned := bytes.TrimSpace([]byte(raw))
	cleaned = bytes.TrimPrefix(cleaned, []byte("```json"))
	cleaned = bytes.TrimPrefix(cleaned, []byte("```"))
	cleaned = bytes.TrimSuffix(cleaned, []byte("```"))
	cleaned = bytes.TrimSpace(cleaned)

	if len(cleaned) > 0 && cleaned[0] != '{' {
		start := bytes.IndexByte(cleaned, '{')
		end := bytes.LastIndexByte(cleaned, '}')
		if start >= 0 && end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	return cleaned
}

func decodeInto(raw string, shape Shape) error {
	if err := json.Unmarshal(CleanJSON(raw), shape); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := shape.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func snippet(s string) string {
	const max = 300
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func promptChars(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	return total
}

func (g *Gateway) logSuccess(op string, latency time.Duration, chars int, retried bool) {
	if g.logger == nil {
		return
	}
	g.logger.Info("completion", "completion ok", map[string]interface{}{
		"op":           op,
		"latency_ms":   latency.Milliseconds(),
		"prompt_chars": chars,
		"retried":      retried,
	})
}

func (g *Gateway) logFailure(op string, latency time.Duration, err error) {
	if g.logger == nil {
		return
	}
	g.logger.Error("completion", "completion failed", map[string]interface{}{
		"op":         op,
		"latency_ms": latency.Milliseconds(),
		"error":      err.Error(),
	})
}
