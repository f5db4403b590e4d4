package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
)

func TestDoReturnsResult(t *testing.T) {
	d := New(2, time.Second)
	got, err := d.Do(context.Background(), "fp", func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "hello" {
		t.Fatalf("Do = %q, want hello", got)
	}
}

func TestDoPropagatesJobError(t *testing.T) {
	d := New(2, time.Second)
	wantErr := fmt.Errorf("boom")
	_, err := d.Do(context.Background(), "fp", func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("Do err = %v, want boom", err)
	}
}

func TestConcurrencyBound(t *testing.T) {
	const limit = 3
	d := New(limit, 5*time.Second)

	var cur, peak atomic.Int32
	var wg sync.WaitGroup
	block := make(chan struct{})

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = d.Do(context.Background(), fmt.Sprintf("fp%d", i), func(ctx context.Context) (string, error) {
				n := cur.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				<-block
				cur.Add(-1)
				return "", nil
			})
		}(i)
	}

	// let the first wave start and the rest queue up
	time.Sleep(100 * time.Millisecond)
	if r := d.Running(); r != limit {
		t.Fatalf("Running() = %d, want %d", r, limit)
	}
	if w := d.Waiting(); w != 10-limit {
		t.Fatalf("Waiting() = %d, want %d", w, 10-limit)
	}

	close(block)
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Fatalf("peak concurrency = %d, exceeds limit %d", p, limit)
	}
}

func TestFIFOStartOrder(t *testing.T) {
	d := New(1, 5*time.Second)

	var mu sync.Mutex
	var order []int
	block := make(chan struct{})
	var wg sync.WaitGroup

	// occupy the only slot
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = d.Do(context.Background(), "hold", func(ctx context.Context) (string, error) {
			<-block
			return "", nil
		})
	}()
	time.Sleep(50 * time.Millisecond)

	// enqueue in a known order, one at a time
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Do(context.Background(), fmt.Sprintf("fp%d", i), func(ctx context.Context) (string, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return "", nil
			})
		}()
		time.Sleep(30 * time.Millisecond) // ensure distinct enqueue times
	}

	close(block)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i {
			t.Fatalf("start order = %v, want ascending", order)
		}
	}
}

func TestCoalescing(t *testing.T) {
	d := New(2, 5*time.Second)

	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]string, 10)

	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := d.Do(context.Background(), "same", func(ctx context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = s
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if c := calls.Load(); c != 1 {
		t.Fatalf("job executed %d times, want 1", c)
	}
	for i, s := range results {
		if s != "shared" {
			t.Fatalf("caller %d got %q, want shared", i, s)
		}
	}
}

func TestJobTimeout(t *testing.T) {
	d := New(1, 50*time.Millisecond)

	_, err := d.Do(context.Background(), "slow", func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "late", nil
		}
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if perr.CodeOf(err) != perr.ErrorCodeTimeout {
		t.Fatalf("error code = %v, want timeout", perr.CodeOf(err))
	}
}

func TestAbandonedCallerDoesNotCancelExecution(t *testing.T) {
	d := New(1, 5*time.Second)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_, _ = d.Do(ctx, "same", func(jobCtx context.Context) (string, error) {
			close(started)
			select {
			case <-release:
				finished.Store(true)
				return "done", nil
			case <-jobCtx.Done():
				return "", jobCtx.Err()
			}
		})
	}()

	<-started
	cancel() // first caller walks away

	// a second caller on the same fingerprint still gets the result
	done := make(chan string, 1)
	go func() {
		s, _ := d.Do(context.Background(), "same", func(context.Context) (string, error) {
			return "fresh", nil
		})
		done <- s
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case s := <-done:
		if s != "done" {
			t.Fatalf("second caller got %q, want the shared result", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second caller never completed")
	}
	if !finished.Load() {
		t.Fatalf("execution was cancelled by the abandoned caller")
	}
}

func TestAbandonedCallerReturnsTimeoutCode(t *testing.T) {
	d := New(1, 5*time.Second)

	block := make(chan struct{})
	defer close(block)
	go func() {
		_, _ = d.Do(context.Background(), "hold", func(context.Context) (string, error) {
			<-block
			return "", nil
		})
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Do(ctx, "other", func(context.Context) (string, error) {
		return "", nil
	})
	if err == nil {
		t.Fatalf("expected error from abandoned wait")
	}
	if perr.CodeOf(err) != perr.ErrorCodeTimeout {
		t.Fatalf("error code = %v, want timeout", perr.CodeOf(err))
	}
}
