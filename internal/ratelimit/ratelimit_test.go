package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keithlinneman/gzassets/internal/httpmw"
)

func newLimiter(t *testing.T, opts ...Option) *IPLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, opts...)
}

func TestAllow_BurstThenReject(t *testing.T) {
	l := newLimiter(t, WithRate(0.001, 3))
	for i := 0; i < 3; i++ {
		if !l.allow("192.0.2.1") {
			t.Fatalf("request %d denied inside burst", i)
		}
	}
	if l.allow("192.0.2.1") {
		t.Fatal("request past burst allowed")
	}
	if !l.allow("192.0.2.2") {
		t.Fatal("separate ip shares a bucket")
	}
}

func TestAllow_Refill(t *testing.T) {
	l := newLimiter(t, WithRate(100, 1))
	if !l.allow("a") || l.allow("a") {
		t.Fatal("burst of 1 not enforced")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.allow("a") {
		t.Fatal("bucket did not refill")
	}
}

func TestDenialHooks(t *testing.T) {
	var first, every []string
	l := newLimiter(t, WithRate(0.001, 1),
		WithOnFirstDenied(func(ip string) { first = append(first, ip) }),
		WithOnDenied(func(ip string) { every = append(every, ip) }),
	)
	for i := 0; i < 4; i++ {
		l.allow("a")
	}
	l.allow("b")
	l.allow("b")

	if len(first) != 2 || first[0] != "a" || first[1] != "b" {
		t.Fatalf("first denials = %v", first)
	}
	if len(every) != 4 {
		t.Fatalf("denials = %v, want 4", every)
	}
}

func TestEvict(t *testing.T) {
	var first int
	l := newLimiter(t, WithRate(0.001, 1), WithTTL(time.Hour), WithOnFirstDenied(func(string) { first++ }))
	l.allow("stale")
	l.allow("stale")
	l.allow("fresh")

	l.mu.Lock()
	l.visitors["stale"].lastSeen = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()

	l.evict(time.Now())
	if l.Len() != 1 {
		t.Fatalf("Len = %d after eviction, want 1", l.Len())
	}

	// an evicted client starts with a fresh bucket and a fresh report
	if !l.allow("stale") {
		t.Fatal("evicted client still limited")
	}
	l.allow("stale")
	if first != 2 {
		t.Fatalf("first-denial hook ran %d times, want 2", first)
	}
}

func TestMaxVisitors(t *testing.T) {
	var capacity int
	l := newLimiter(t, WithMaxVisitors(2), WithTTL(time.Hour), WithOnCapacity(func() { capacity++ }))

	if !l.allow("a") || !l.allow("b") {
		t.Fatal("under capacity denied")
	}
	if l.allow("c") || l.allow("d") {
		t.Fatal("new client admitted at capacity")
	}
	if !l.allow("a") {
		t.Fatal("known client denied at capacity")
	}
	if capacity != 1 {
		t.Fatalf("capacity hook ran %d times, want 1", capacity)
	}

	l.mu.Lock()
	l.visitors["b"].lastSeen = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()
	l.evict(time.Now())

	if !l.allow("c") {
		t.Fatal("eviction did not free capacity")
	}
	if l.allow("d") {
		t.Fatal("cap not enforced after refill")
	}
	if capacity != 2 {
		t.Fatalf("capacity hook ran %d times, want 2", capacity)
	}
}

func TestMaxVisitors_ZeroDisables(t *testing.T) {
	l := newLimiter(t, WithMaxVisitors(0))
	for i := 0; i < 100; i++ {
		if !l.allow(string(rune('a'+i%26)) + string(rune('a'+i/26))) {
			t.Fatal("client denied with cap disabled")
		}
	}
}

func TestCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l := &IPLimiter{visitors: map[string]*visitor{}, ttl: 10 * time.Millisecond}
	go func() {
		l.cleanup(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not exit after cancel")
	}
}

func TestMiddleware(t *testing.T) {
	l := newLimiter(t, WithRate(0.001, 1))
	var reached int32
	h := httpmw.ClientIP(l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&reached, 1)
	})))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/js/app.js", http.NoBody)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("192.0.2.1:1"); rec.Code != http.StatusOK {
		t.Fatalf("first = %d", rec.Code)
	}
	rec := send("192.0.2.1:2")
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("second = %d %v", rec.Code, rec.Header())
	}
	if rec := send("192.0.2.9:1"); rec.Code != http.StatusOK {
		t.Fatalf("other ip = %d", rec.Code)
	}
	if atomic.LoadInt32(&reached) != 2 {
		t.Fatalf("handler reached %d times, want 2", reached)
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := newLimiter(t, WithRate(0.001, 10), WithMaxVisitors(5))
	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if l.allow(string(rune('a' + i%8))) {
				atomic.AddInt64(&allowed, 1)
			}
		}(i)
	}
	wg.Wait()
	if l.Len() > 5 {
		t.Fatalf("Len = %d exceeds cap", l.Len())
	}
	if allowed == 0 || allowed > 50 {
		t.Fatalf("allowed = %d", allowed)
	}
}
