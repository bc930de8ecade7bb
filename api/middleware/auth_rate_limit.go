package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/farmfresh-backend/api/responses"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

// maxAuthBodyBytes bounds how much of a login/register body is buffered to find the email.
const maxAuthBodyBytes = 64 << 10

// AuthRateLimitPolicy is a fixed-window budget for one auth endpoint, counted per
// client IP and per submitted email.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) disabled() bool {
	return p.window <= 0 || (p.ipLimit <= 0 && p.emailLimit <= 0)
}

type rateBucket struct {
	scope string
	key   string
	limit int
	// label is logged in place of the raw identifier.
	label string
}

func (p AuthRateLimitPolicy) ipBucket(ip string) (rateBucket, bool) {
	if p.ipLimit <= 0 || ip == "" {
		return rateBucket{}, false
	}
	return rateBucket{
		scope: "ip",
		key:   kv.RateLimitKey(fmt.Sprintf("ip:%s:%s", p.name, ip)),
		limit: p.ipLimit,
		label: ip,
	}, true
}

func (p AuthRateLimitPolicy) emailBucket(email string) (rateBucket, bool) {
	if p.emailLimit <= 0 || email == "" {
		return rateBucket{}, false
	}
	sum := sha256.Sum256([]byte(email))
	digest := hex.EncodeToString(sum[:])
	return rateBucket{
		scope: "email",
		key:   kv.RateLimitKey(fmt.Sprintf("email:%s:%s", p.name, digest)),
		limit: p.emailLimit,
		label: digest[:12],
	}, true
}

// AuthRateLimit rejects requests with 429 once either the IP or the email budget of
// the policy is spent. Counter failures surface as dependency errors.
func AuthRateLimit(policy AuthRateLimitPolicy, counter kv.Counter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.disabled() || counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			buckets := make([]rateBucket, 0, 2)
			if b, ok := policy.ipBucket(clientIP(r)); ok {
				buckets = append(buckets, b)
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if b, ok := policy.emailBucket(submittedEmail(body)); ok {
					buckets = append(buckets, b)
				}
			}

			for _, b := range buckets {
				attempts, err := counter.IncrWithTTL(ctx, b.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if attempts > int64(b.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.name,
							"scope":    b.scope,
							"subject":  b.label,
							"attempts": attempts,
							"limit":    b.limit,
						}), "auth.rate_limited")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, please try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first hop of X-Forwarded-For, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func submittedEmail(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}
