package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

var unmapped = []intelligence.UnmappedField{
	{FieldName: "sonderfeld_x", Label: "sonderfeld_x", Kind: acroform.FieldKindText, Purpose: intelligence.PurposeUnknown},
	{FieldName: "nachname", Label: "Nachname", Kind: acroform.FieldKindText, Purpose: intelligence.PurposeFamilyName},
}

type stubMatcher struct {
	calls       atomic.Int32
	suggestions []Suggestion
	err         error
	wait        bool
}

func (s *stubMatcher) Match(ctx context.Context, _ Request) ([]Suggestion, error) {
	s.calls.Add(1)
	if s.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.suggestions, s.err
}

func TestHTTPMatcher_Match(t *testing.T) {
	var got Request
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestions":[{"fieldName":"nachname","suggestedValue":"Schmidt","reasoning":"family name","confidence":85}]}`))
	}))
	defer srv.Close()

	m := NewHTTPMatcher(srv.URL, WithHTTPClient(srv.Client()), WithHeader("Authorization", "Bearer token"))
	suggestions, err := m.Match(context.Background(), Request{
		UnmappedFields: []Field{{FieldName: "nachname", Label: "Nachname"}},
		UserData:       intelligence.Profile{"familienname": "Schmidt"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Suggestion{{FieldName: "nachname", SuggestedValue: "Schmidt", Reasoning: "family name", Confidence: 85}}, suggestions)
	assert.Equal(t, "nachname", got.UnmappedFields[0].FieldName)
	assert.Equal(t, "Schmidt", got.UserData["familienname"])
	assert.Equal(t, "Bearer token", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	_, err = uuid.Parse(headers.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestHTTPMatcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
			wantErr: "status 503",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"suggestions":`))
			},
			wantErr: "failed to decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPMatcher(srv.URL, WithHTTPClient(srv.Client())).Match(context.Background(), Request{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEscalate_FiltersSuggestions(t *testing.T) {
	stub := &stubMatcher{suggestions: []Suggestion{
		{FieldName: "nachname", SuggestedValue: "Schmidt", Confidence: 140},
		{FieldName: "sonderfeld_x", SuggestedValue: "  ", Confidence: 60},
		{FieldName: "vorname", SuggestedValue: "Anna", Confidence: 90},
		{FieldName: "sonderfeld_x", SuggestedValue: "A-17", Confidence: -3},
	}}

	suggestions, err := NewEscalator(stub, time.Second, nil).Escalate(context.Background(), unmapped, nil)
	require.NoError(t, err)

	assert.Equal(t, []Suggestion{
		{FieldName: "nachname", SuggestedValue: "Schmidt", Confidence: 100},
		{FieldName: "sonderfeld_x", SuggestedValue: "A-17", Confidence: 0},
	}, suggestions)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestEscalate_EmptyListMakesNoCall(t *testing.T) {
	stub := &stubMatcher{}
	suggestions, err := NewEscalator(stub, time.Second, nil).Escalate(context.Background(), nil, intelligence.Profile{})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, int32(0), stub.calls.Load())
}

func TestEscalate_Unavailable(t *testing.T) {
	tests := []struct {
		name      string
		escalator *Escalator
		wantCause error
	}{
		{
			name:      "not configured",
			escalator: NewEscalator(nil, time.Second, nil),
			wantCause: ErrNotConfigured,
		},
		{
			name:      "matcher error",
			escalator: NewEscalator(&stubMatcher{err: errors.New("connection refused")}, time.Second, nil),
		},
		{
			name:      "timeout",
			escalator: NewEscalator(&stubMatcher{wait: true}, 20*time.Millisecond, nil),
			wantCause: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.escalator.Escalate(context.Background(), unmapped, nil)
			require.Error(t, err)
			assert.True(t, pdferrors.IsFallbackUnavailable(err))
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestEscalate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEscalator(&stubMatcher{wait: true}, 0, nil).Escalate(ctx, unmapped, nil)
	assert.True(t, pdferrors.IsFallbackUnavailable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEscalateAsync(t *testing.T) {
	stub := &stubMatcher{suggestions: []Suggestion{{FieldName: "nachname", SuggestedValue: "Schmidt", Confidence: 75}}}

	ch := NewEscalator(stub, time.Second, nil).EscalateAsync(context.Background(), unmapped, nil)

	outcome, ok := <-ch
	require.True(t, ok)
	require.NoError(t, outcome.Err)
	assert.Len(t, outcome.Suggestions, 1)

	_, open := <-ch
	assert.False(t, open)
}

func TestEscalateAsync_AbandonedDoesNotLeak(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := NewEscalator(&stubMatcher{wait: true}, time.Second, nil).EscalateAsync(ctx, unmapped, nil)
	cancel()

	outcome := <-ch
	assert.True(t, pdferrors.IsFallbackUnavailable(outcome.Err))
}
