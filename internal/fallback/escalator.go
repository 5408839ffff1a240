package fallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

// ErrNotConfigured is the cause reported when no matcher is set up
var ErrNotConfigured = errors.New("semantic matching service not configured")

// Outcome is what EscalateAsync delivers
type Outcome struct {
	Suggestions []Suggestion
	Err         error
}

// Escalator bounds and logs calls to a Matcher
type Escalator struct {
	matcher Matcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewEscalator creates an escalator. A nil matcher yields one whose calls fail
// with FallbackUnavailable; timeout <= 0 leaves only the caller's deadline.
func NewEscalator(matcher Matcher, timeout time.Duration, logger *zap.Logger) *Escalator {
	return &Escalator{
		matcher: matcher,
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}
}

// Enabled reports whether a matcher is configured
func (e *Escalator) Enabled() bool {
	return e != nil && e.matcher != nil
}

// Escalate asks the matcher for values of the unmapped fields. An empty list
// returns without a call. Suggestions for fields that were not asked about, or
// with an empty value, are dropped; confidence is clamped to 0..100.
func (e *Escalator) Escalate(ctx context.Context, unmapped []intelligence.UnmappedField, profile intelligence.Profile) ([]Suggestion, error) {
	if len(unmapped) == 0 {
		return []Suggestion{}, nil
	}
	if !e.Enabled() {
		return nil, pdferrors.NewFallbackUnavailableError(ErrNotConfigured)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := Request{
		UnmappedFields: make([]Field, 0, len(unmapped)),
		UserData:       profile,
	}
	if req.UserData == nil {
		req.UserData = intelligence.Profile{}
	}
	asked := make(map[string]bool, len(unmapped))
	for _, u := range unmapped {
		req.UnmappedFields = append(req.UnmappedFields, Field{
			FieldName: u.FieldName,
			Label:     u.Label,
			Kind:      string(u.Kind),
			Purpose:   string(u.Purpose),
		})
		asked[u.FieldName] = true
	}

	start := time.Now()
	raw, err := e.matcher.Match(ctx, req)
	if err != nil {
		e.logger.Warn("semantic matching unavailable",
			zap.Int("fields", len(unmapped)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, pdferrors.NewFallbackUnavailableError(err)
	}

	suggestions := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		if !asked[s.FieldName] || strings.TrimSpace(s.SuggestedValue) == "" {
			continue
		}
		s.Confidence = clamp(s.Confidence)
		suggestions = append(suggestions, s)
	}

	e.logger.Debug("semantic matching finished",
		zap.Int("fields", len(unmapped)),
		zap.Int("suggestions", len(suggestions)),
		zap.Int("dropped", len(raw)-len(suggestions)),
		zap.Duration("elapsed", time.Since(start)))
	return suggestions, nil
}

// EscalateAsync runs Escalate in the background. The channel receives exactly
// one Outcome and is then closed.
func (e *Escalator) EscalateAsync(ctx context.Context, unmapped []intelligence.UnmappedField, profile intelligence.Profile) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		suggestions, err := e.Escalate(ctx, unmapped, profile)
		out <- Outcome{Suggestions: suggestions, Err: err}
	}()
	return out
}

func clamp(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}
