package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return syscall.ECONNRESET
	})

	if !errors.Is(err, syscall.ECONNRESET) {
		t.Errorf("expected wrapped ECONNRESET, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	authErr := errors.New("password authentication failed")
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return authErr
	})

	if err != authErr {
		t.Errorf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
}

func TestWithBackoff_CustomRetryable(t *testing.T) {
	cfg := fastConfig(2)
	cfg.Retryable = func(error) bool { return true }

	attempts := 0
	_ = WithBackoff(context.Background(), cfg, func() error {
		attempts++
		return errors.New("anything")
	})

	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	cfg := fastConfig(5)
	cfg.InitialDelay = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return syscall.ECONNREFUSED
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil", err: nil, retryable: false},
		{name: "connection refused", err: syscall.ECONNREFUSED, retryable: true},
		{name: "wrapped reset", err: fmt.Errorf("read: %w", syscall.ECONNRESET), retryable: true},
		{name: "network unreachable", err: syscall.ENETUNREACH, retryable: true},
		{name: "context canceled", err: context.Canceled, retryable: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, retryable: false},
		{name: "plain error", err: errors.New("boom"), retryable: false},
		{name: "postgres starting up", err: fmt.Errorf("ping: %w", &pgconn.PgError{Code: "57P03"}), retryable: true},
		{name: "postgres too many connections", err: &pgconn.PgError{Code: "53300"}, retryable: true},
		{name: "postgres bad password", err: &pgconn.PgError{Code: "28P01"}, retryable: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.5)
		if got < base || got > base+base/2 {
			t.Fatalf("addJitter = %v, want within [%v, %v]", got, base, base+base/2)
		}
	}
	if got := addJitter(base, 0); got != base {
		t.Errorf("zero fraction changed duration to %v", got)
	}
}
