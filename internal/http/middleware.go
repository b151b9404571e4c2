package http

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/apperr"
	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	"github.com/redis/go-redis/v9"
)

const cartSessionHeader = "X-Cart-Session"

type requestIDKey struct{}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// Authenticate attaches the caller when a bearer token is present. Requests
// without a token pass through anonymously; a bad token is rejected.
func Authenticate(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid authorization header format")
				return
			}

			user, err := v.Verify(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user authentication")
			return
		}
		if !u.Admin {
			respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter is a fixed-window counter in Redis keyed by caller and method.
// When Redis is unreachable requests are let through.
func RateLimiter(client *redis.Client, maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := "rl:" + callerKey(r) + ":" + r.Method
			resetKey := key + ":resetAt"

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				log.Printf("[ratelimit] redis error, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				resetAt := time.Now().Add(window)
				pipe := client.TxPipeline()
				pipe.Expire(ctx, key, window)
				pipe.Set(ctx, resetKey, resetAt.Unix(), window)
				if _, err := pipe.Exec(ctx); err != nil {
					log.Printf("[ratelimit] failed to set window: %v", err)
				}
			}

			resetAtUnix, _ := client.Get(ctx, resetKey).Int64()
			resetIn := max(0, int(time.Until(time.Unix(resetAtUnix, 0)).Seconds()))
			remaining := max(0, maxRequests-int(count))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

			if int(count) > maxRequests {
				w.Header().Set("Retry-After", strconv.Itoa(resetIn))
				respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// cartOwner is the signed-in user, or the guest session from the header.
func cartOwner(r *http.Request) (string, error) {
	if id := auth.UserID(r.Context()); id != "" {
		return id, nil
	}
	if session := strings.TrimSpace(r.Header.Get(cartSessionHeader)); session != "" {
		return "guest:" + session, nil
	}
	return "", fmt.Errorf("%w: sign in or send %s", apperr.ErrAuthRequired, cartSessionHeader)
}
