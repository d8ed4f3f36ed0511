package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/fn"
)

var errFail = errors.New("fail")

func failing(context.Context) error { return errFail }
func passing(context.Context) error { return nil }

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = b.Call(ctx, failing)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}
	if err := b.Call(ctx, passing); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Second})
	ctx := context.Background()
	_ = b.Call(ctx, failing)
	_ = b.Call(ctx, passing)
	_ = b.Call(ctx, failing)
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []string
	b := NewBreaker(BreakerOpts{
		FailThreshold: 1,
		Timeout:       time.Minute,
		OnStateChange: func(from, to State) { transitions = append(transitions, from.String()+">"+to.String()) },
	})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Call(ctx, failing)
	now = now.Add(time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %v", b.State())
	}
	if err := b.Call(ctx, passing); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, transitions)
		}
	}
}

func TestBreakerIgnoresUncountedErrors(t *testing.T) {
	ignored := errors.New("bad input")
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Counts: func(err error) bool { return !errors.Is(err, ignored) }})
	_ = b.Call(context.Background(), func(context.Context) error { return ignored })
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
}

func TestBreakerStage(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Hour})
	stage := BreakerStage(b, func(context.Context, int) fn.Result[int] { return fn.Err[int](errFail) })
	_ = stage(context.Background(), 1)
	if _, err := stage(context.Background(), 1).Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestLimiterStage(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	stage := LimiterStage(l, fn.MapStage(func(n int) int { return n }))
	if _, err := stage(context.Background(), 1).Unwrap(); err != nil {
		t.Fatalf("first call should pass, got %v", err)
	}
	if _, err := stage(context.Background(), 1).Unwrap(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(LimiterOpts{})
	for i := 0; i < 100; i++ {
		if !l.Allow() {
			t.Fatalf("call %d limited with rate disabled", i)
		}
	}
}
