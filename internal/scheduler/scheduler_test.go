package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewRejectsZeroInterval(t *testing.T) {
	if _, err := New(Options{}, zerolog.Nop()); err == nil {
		t.Fatal("zero interval should be rejected")
	}
}

func TestNextTickAligned(t *testing.T) {
	s, _ := New(Options{Interval: time.Hour, AlignToStart: true}, zerolog.Nop())
	now := time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("next = %s", got)
	}
	exact := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	if got := s.nextTick(exact); !got.Equal(exact.Add(time.Hour)) {
		t.Fatalf("bucket boundary should advance, got %s", got)
	}
}

func TestNextTickUnaligned(t *testing.T) {
	s, _ := New(Options{Interval: time.Minute}, zerolog.Nop())
	now := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("next = %s", got)
	}
	if got := s.bucketStart(now); !got.Equal(now) {
		t.Fatalf("bucketStart = %s", got)
	}
}

func TestRunTicksAndSurvivesErrors(t *testing.T) {
	s, _ := New(Options{Interval: 10 * time.Millisecond, RunImmediately: true}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, time.Time) error {
			if atomic.AddInt32(&ticks, 1) >= 3 {
				cancel()
			}
			return errors.New("tick failed")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run should return context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not tick")
	}
	if atomic.LoadInt32(&ticks) < 3 {
		t.Fatalf("ticks = %d", ticks)
	}
}

func TestRunStartupDelayCancelled(t *testing.T) {
	s, _ := New(Options{Interval: time.Hour, StartupDelay: time.Hour}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, func(context.Context, time.Time) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
