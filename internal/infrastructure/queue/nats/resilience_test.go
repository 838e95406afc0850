package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/mkarasev/doccat/internal/core/domain"
)

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{"nil", nil, false, false},
		{"context canceled", context.Canceled, false, false},
		{"deadline exceeded", context.DeadlineExceeded, false, false},
		{"no servers", nats.ErrNoServers, true, true},
		{"timeout", nats.ErrTimeout, true, true},
		{"connection closed", nats.ErrConnectionClosed, true, true},
		{"disconnected", nats.ErrDisconnected, true, true},
		{"bad subject", nats.ErrBadSubject, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := classifyNATSError(tc.err)
			if c.Retryable != tc.retryable || c.RecordFailure != tc.record {
				t.Fatalf("classify(%v) = %+v, want retryable=%v record=%v", tc.err, c, tc.retryable, tc.record)
			}
		})
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	if err := wrapTemporaryIfNeeded(nil); err != nil {
		t.Fatalf("nil must stay nil, got %v", err)
	}

	wrapped := wrapTemporaryIfNeeded(nats.ErrNoServers)
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("transport failure must wrap as temporary, got %v", wrapped)
	}
	if !errors.Is(wrapped, nats.ErrNoServers) {
		t.Fatalf("cause must stay reachable, got %v", wrapped)
	}
	// Already marked temporary: no double wrap.
	if again := wrapTemporaryIfNeeded(wrapped); again != wrapped {
		t.Fatalf("expected idempotent wrap, got %v", again)
	}

	permanent := wrapTemporaryIfNeeded(nats.ErrBadSubject)
	if domain.IsKind(permanent, domain.ErrTemporary) {
		t.Fatalf("permanent failure must not be marked temporary")
	}
}
