package util

import (
	"context"
	"errors"
	"testing"
)

func TestRetry(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		got, err := Retry(3, func() (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "ok" || calls != 1 {
			t.Errorf("got %q after %d calls", got, calls)
		}
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		got, err := Retry(3, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 || calls != 3 {
			t.Errorf("got %d after %d calls", got, calls)
		}
	})

	t.Run("returns last error", func(t *testing.T) {
		wantErr := errors.New("persistent")
		calls := 0
		_, err := Retry(4, func() (int, error) {
			calls++
			return 0, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("err = %v, want %v", err, wantErr)
		}
		if calls != 4 {
			t.Errorf("calls = %d, want 4", calls)
		}
	})

	t.Run("non positive tries defaults to one", func(t *testing.T) {
		calls := 0
		_, _ = Retry(0, func() (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestRetryWithContext(t *testing.T) {
	t.Run("canceled before first try", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := RetryWithContext(ctx, 3, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("unreachable")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if calls != 0 {
			t.Errorf("fn should not run after cancellation, ran %d times", calls)
		}
	})

	t.Run("context error from fn is not retried", func(t *testing.T) {
		calls := 0
		_, err := RetryWithContext(context.Background(), 3, func(context.Context) (int, error) {
			calls++
			return 0, context.DeadlineExceeded
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want context.DeadlineExceeded", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("transient errors are retried", func(t *testing.T) {
		calls := 0
		got, err := RetryWithContext(context.Background(), 3, func(context.Context) (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "ok" || calls != 2 {
			t.Errorf("got %q after %d calls", got, calls)
		}
	})
}
