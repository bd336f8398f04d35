package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60})
	now := time.Now()

	for i := 0; i < 2; i++ {
		if ok, _, _ := l.allow("1.2.3.4", now); !ok {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}

	ok, _, retry := l.allow("1.2.3.4", now)
	if ok {
		t.Fatal("request beyond burst should be refused")
	}
	if retry != 1 {
		t.Errorf("retry = %d, want 1 at one token per second", retry)
	}

	if ok, _, _ := l.allow("5.6.7.8", now); !ok {
		t.Error("another IP must have its own bucket")
	}

	if ok, _, _ := l.allow("1.2.3.4", now.Add(1100*time.Millisecond)); !ok {
		t.Error("bucket should refill over time")
	}
}

func TestLimiterSweep(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, IdleTTL: time.Minute, SweepInterval: time.Second})
	now := time.Now()

	l.allow("1.2.3.4", now)
	l.allow("5.6.7.8", now.Add(2*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.visitors["1.2.3.4"]; ok {
		t.Error("idle visitor should have been swept")
	}
	if len(l.visitors) != 1 {
		t.Errorf("visitors = %d, want 1", len(l.visitors))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/search", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	if w := do(); w.Code != http.StatusAccepted {
		t.Fatalf("first request status = %d, want %d", w.Code, http.StatusAccepted)
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
}
