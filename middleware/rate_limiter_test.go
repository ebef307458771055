package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func TestClientIP_DirectRemote(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	if ip := clientIP(req, nil); ip != "203.0.113.5" {
		t.Fatalf("expected direct remote IP, got %s", ip)
	}
}

func TestClientIP_TrustedProxyXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.10")
	if ip := clientIP(req, []string{"198.51.100.10"}); ip != "203.0.113.7" {
		t.Fatalf("expected X-Forwarded-For first value, got %s", ip)
	}
}

func TestClientIP_UntrustedProxyIgnoresXFF(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.local/", nil)
	req.RemoteAddr = "198.51.100.11:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 198.51.100.11")
	if ip := clientIP(req, []string{"198.51.100.10"}); ip != "198.51.100.11" {
		t.Fatalf("expected remote IP when proxy untrusted, got %s", ip)
	}
}

func TestMemoryWindowLimit(t *testing.T) {
	l := &IPRateLimiter{
		name:    "test",
		max:     3,
		window:  time.Minute,
		windows: make(map[string]*window),
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow(ctx, "10.0.0.1") {
		t.Fatal("fourth request should be limited")
	}
	// Other IPs have their own window.
	if !l.allow(ctx, "10.0.0.2") {
		t.Fatal("different IP must not share the window")
	}
}

func TestMemoryWindowReset(t *testing.T) {
	l := &IPRateLimiter{
		name:    "test",
		max:     1,
		window:  time.Minute,
		windows: make(map[string]*window),
	}
	ctx := context.Background()

	if !l.allow(ctx, "10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if l.allow(ctx, "10.0.0.1") {
		t.Fatal("second request should be limited")
	}
	l.mu.Lock()
	l.windows["10.0.0.1"].resetAt = time.Now().Add(-time.Second)
	l.mu.Unlock()
	if !l.allow(ctx, "10.0.0.1") {
		t.Fatal("request after window expiry should be allowed")
	}
}

// fakeRedis scripts the three limiter commands against an in-process counter.
type fakeRedis struct {
	count     int64
	expireErr error
	expired   bool
	deleted   bool
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.count++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(f.count)
	return cmd
}

func (f *fakeRedis) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if f.expireErr != nil {
		cmd.SetErr(f.expireErr)
		return cmd
	}
	f.expired = true
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.deleted = true
	f.count = 0
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestRedisWindowLimit(t *testing.T) {
	l := &IPRateLimiter{name: "test", max: 2, window: time.Minute}
	rc := &fakeRedis{}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !l.allowRedis(ctx, rc, "10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allowRedis(ctx, rc, "10.0.0.1") {
		t.Fatal("third request should be limited")
	}
	if !rc.expired {
		t.Fatal("fresh key never got a TTL")
	}
}

func TestRedisWindowExpireFailureDropsKey(t *testing.T) {
	l := &IPRateLimiter{name: "test", max: 1, window: time.Minute}
	rc := &fakeRedis{expireErr: errors.New("connection reset")}
	ctx := context.Background()

	// The key that could not get its TTL must be deleted, not left to count
	// against the IP forever.
	if !l.allowRedis(ctx, rc, "10.0.0.1") {
		t.Fatal("request must pass when the TTL could not be set")
	}
	if !rc.deleted {
		t.Fatal("unexpiring key was left behind")
	}

	// Once EXPIRE works again the IP starts a normal window from scratch.
	rc.expireErr = nil
	if !l.allowRedis(ctx, rc, "10.0.0.1") {
		t.Fatal("first request of the recovered window should be allowed")
	}
	if l.allowRedis(ctx, rc, "10.0.0.1") {
		t.Fatal("second request of the recovered window should be limited")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewIPRateLimiter("test", 1, time.Minute)
	l.Stop()
	l.Stop()

	// The limiter still enforces its window after the cleaner is gone.
	ctx := context.Background()
	if !l.allow(ctx, "10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if l.allow(ctx, "10.0.0.1") {
		t.Fatal("second request should be limited")
	}
}
