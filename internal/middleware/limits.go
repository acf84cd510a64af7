package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleClientTTL is how long an unseen client keeps its token bucket.
const idleClientTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives every client address its own token bucket, so one
// dashboard user uploading in a loop cannot starve the others.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time

	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter allows each client rps requests per second with bursts of
// up to burst requests.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientBucket),
		logger:  logger,
		now:     time.Now,
	}
}

// Handler answers 429 with a Retry-After taken from the client's bucket.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		wait, ok := rl.take(client)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		retry := int(math.Ceil(wait.Seconds()))
		if retry < 1 {
			retry = 1
		}
		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("client", client),
			slog.String("path", r.URL.Path),
			slog.Int("retry_after", retry))

		w.Header().Set("Retry-After", strconv.Itoa(retry))
		_ = ProblemFromStatus(http.StatusTooManyRequests,
			"Too many requests from this client. Retry after "+strconv.Itoa(retry)+" seconds",
			traceIDFrom(r.Context())).Render(w, r)
	})
}

// take spends one token for client. When none is left it reports how long
// until the next one.
func (rl *RateLimiter) take(client string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleClientTTL {
		for k, b := range rl.clients {
			if now.Sub(b.lastSeen) > idleClientTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[client] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return 0, true
	}
	res := b.limiter.ReserveN(now, 1)
	defer res.CancelAt(now)
	if !res.OK() {
		return time.Minute, false
	}
	return res.DelayFrom(now), false
}

// Clients reports how many client buckets are tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func clientKey(r *http.Request) string {
	addr := GetRealIP(r)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// CORSConfig lists what cross-origin callers of the API may do.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Logger           *slog.Logger
}

func (c CORSConfig) allows(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// CORS answers preflight requests with 204 and decorates the rest. An
// origin outside AllowedOrigins gets no Access-Control-Allow-Origin.
func CORS(config CORSConfig) func(next http.Handler) http.Handler {
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = []string{"Accept", "Content-Type", RequestIDHeader}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 300
	}
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := config.allows(origin)

			h := w.Header()
			if allowed && origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}
			if config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if config.Logger != nil {
				config.Logger.DebugContext(r.Context(), "CORS preflight",
					slog.String("origin", origin), slog.Bool("allowed", allowed))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
