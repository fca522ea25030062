package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/stats"
)

type fakeSummarizer struct {
	mu     sync.Mutex
	calls  []music.TimeRange
	forced []bool
	fail   map[music.TimeRange]error
}

func (f *fakeSummarizer) GetSummary(_ context.Context, r music.TimeRange, force bool) (*stats.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r)
	f.forced = append(f.forced, force)
	if err := f.fail[r]; err != nil {
		return nil, err
	}
	return &stats.Summary{TimeRange: r}, nil
}

func (f *fakeSummarizer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeConn struct {
	connected atomic.Bool
}

func (f *fakeConn) IsConnected(context.Context) bool {
	return f.connected.Load()
}

func connected() *fakeConn {
	c := &fakeConn{}
	c.connected.Store(true)
	return c
}

func TestRefresh_AllRanges(t *testing.T) {
	sum := &fakeSummarizer{}
	s := New(sum, connected())

	result, err := s.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Refreshed) != 3 {
		t.Errorf("expected 3 refreshed ranges, got %v", result.Refreshed)
	}
	for i, forced := range sum.forced {
		if !forced {
			t.Errorf("call %d was not forced", i)
		}
	}
}

func TestRefresh_PartialFailure(t *testing.T) {
	sum := &fakeSummarizer{fail: map[music.TimeRange]error{
		music.MediumTerm: errors.New("provider down"),
	}}
	s := New(sum, connected())

	result, err := s.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Refreshed) != 2 {
		t.Errorf("expected 2 refreshed, got %v", result.Refreshed)
	}
	if result.Failed[music.MediumTerm] != "provider down" {
		t.Errorf("expected medium_term failure, got %v", result.Failed)
	}
}

func TestRefresh_NotConnected(t *testing.T) {
	sum := &fakeSummarizer{}
	s := New(sum, &fakeConn{})

	_, err := s.Refresh(context.Background(), false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if sum.count() != 0 {
		t.Errorf("expected no summary calls, got %d", sum.count())
	}
}

func TestRefresh_Cooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sum := &fakeSummarizer{}
	s := New(sum, connected(),
		WithCooldown(time.Hour),
		WithRanges(music.ShortTerm),
		WithClock(func() time.Time { return now }),
	)

	if _, err := s.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	now = now.Add(30 * time.Minute)
	_, err := s.Refresh(context.Background(), false)
	if !errors.Is(err, ErrRefreshTooRecent) {
		t.Fatalf("expected ErrRefreshTooRecent, got %v", err)
	}
	ok, next := s.CanRefresh()
	if ok || !next.Equal(now.Add(30*time.Minute)) {
		t.Errorf("CanRefresh() = %v, %v", ok, next)
	}

	// Force bypasses the cooldown
	if _, err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("forced refresh: %v", err)
	}

	now = now.Add(time.Hour)
	if _, err := s.Refresh(context.Background(), false); err != nil {
		t.Fatalf("refresh after cooldown: %v", err)
	}

	if sum.count() != 3 {
		t.Errorf("expected 3 summary calls, got %d", sum.count())
	}
}

func TestRun_RefreshesUntilCancelled(t *testing.T) {
	sum := &fakeSummarizer{}
	s := New(sum, connected(), WithCooldown(10*time.Millisecond), WithRanges(music.ShortTerm))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sum.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 refreshes, got %d", sum.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_SkipsWhileDisconnected(t *testing.T) {
	sum := &fakeSummarizer{}
	conn := &fakeConn{}
	s := New(sum, conn, WithCooldown(5*time.Millisecond), WithRanges(music.ShortTerm))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if sum.count() != 0 {
		t.Errorf("expected no refreshes while disconnected, got %d", sum.count())
	}
}
