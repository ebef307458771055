package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// Per-IP fixed-window rate limiter. When REDIS_ADDR is configured the
// counters live in Redis (INCR + EXPIRE) so limits hold across replicas;
// otherwise an in-memory map is used.

var (
	redisOnce   sync.Once
	redisClient *redis.Client
)

func sharedRedis() *redis.Client {
	redisOnce.Do(func() {
		addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
		if addr == "" {
			return
		}
		opts := &redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS")}
		rc := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Printf("[ratelimit] redis ping failed, falling back to memory: %v", err)
			return
		}
		redisClient = rc
	})
	return redisClient
}

// redisCounter is the slice of redis.Client the limiter needs.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type IPRateLimiter struct {
	name   string
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window

	trustedCIDR []string

	stopOnce sync.Once
	stop     chan struct{}
}

type window struct {
	count   int
	resetAt time.Time
}

// NewIPRateLimiter allows max requests per client IP per window.
func NewIPRateLimiter(name string, max int, windowDur time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		name:    name,
		max:     max,
		window:  windowDur,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for ip, w := range l.windows {
				if now.After(w.resetAt) {
					delete(l.windows, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop terminates the background cleanup goroutine. Safe to call more than
// once; the limiter itself keeps working after Stop.
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// allow reports whether the request from ip fits in the current window.
func (l *IPRateLimiter) allow(ctx context.Context, ip string) bool {
	if rc := sharedRedis(); rc != nil {
		return l.allowRedis(ctx, rc, ip)
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[ip]
	if !ok || now.After(w.resetAt) {
		l.windows[ip] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	w.count++
	return w.count <= l.max
}

// allowRedis counts the request in Redis. A fresh key must get its TTL: a
// counter that never expires would limit the IP forever, so when EXPIRE
// fails the key is dropped and the request passes, same fail-open stance as
// a failed INCR.
func (l *IPRateLimiter) allowRedis(ctx context.Context, rc redisCounter, ip string) bool {
	key := fmt.Sprintf("ratelimit:%s:%s", l.name, ip)
	count, err := rc.Incr(ctx, key).Result()
	if err != nil {
		// Redis outage must not take the endpoint down with it.
		log.Printf("[ratelimit] redis incr failed: %v", err)
		return true
	}
	if count == 1 {
		if err := rc.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("[ratelimit] redis expire failed: %v", err)
			if delErr := rc.Del(ctx, key).Err(); delErr != nil {
				log.Printf("[ratelimit] redis del failed: %v", delErr)
			}
			return true
		}
	}
	return count <= int64(l.max)
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.trustedCIDR)
		if !l.allow(r.Context(), ip) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: "Too many requests, please try again later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the caller IP. X-Forwarded-For / X-Real-IP are only
// honored when the remote address sits inside one of the trusted CIDRs.
func clientIP(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)

	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil && remoteIP != nil && ipnet.Contains(remoteIP) {
				trusted = true
				break
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}

	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	if remoteHost == "" {
		return r.RemoteAddr
	}
	return remoteHost
}
