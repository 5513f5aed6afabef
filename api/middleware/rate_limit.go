package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hostelhub/hostelhub-backend/api/responses"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

// maxPeekBytes bounds how much of a body a key function may buffer.
const maxPeekBytes = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// KeyFunc derives the counter subject from a request. An empty subject
// skips the rule for that request.
type KeyFunc func(r *http.Request) (string, error)

// RateRule is one fixed-window counter, e.g. login attempts per IP.
type RateRule struct {
	Scope  string
	Limit  int
	Window time.Duration
	Key    KeyFunc
}

func (r RateRule) active() bool {
	return r.Limit > 0 && r.Window > 0 && r.Key != nil && r.Scope != ""
}

// RateLimit checks rules in order and stops at the first one exhausted.
// Rules with a zero limit or window are ignored, and a nil store disables
// limiting entirely.
func RateLimit(store rateLimiterStore, logg *logger.Logger, rules ...RateRule) func(http.Handler) http.Handler {
	var active []RateRule
	for _, rule := range rules {
		if rule.active() {
			active = append(active, rule)
		}
	}
	return func(next http.Handler) http.Handler {
		if store == nil || len(active) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, rule := range active {
				subject, err := rule.Key(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				if subject == "" {
					continue
				}
				allowed, count, err := store.FixedWindowAllow(ctx, rule.Scope+":"+subject, int64(rule.Limit), rule.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectRateLimited(ctx, logg, w, rule, subject, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit throttles credential guessing per client IP and per
// target email.
func LoginRateLimit(cfg config.AuthRateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return RateLimit(store, logg,
		RateRule{Scope: "login:ip", Limit: cfg.LoginIPLimit, Window: cfg.LoginWindow, Key: ByClientIP},
		RateRule{Scope: "login:email", Limit: cfg.LoginEmailLimit, Window: cfg.LoginWindow, Key: ByJSONField("email")},
	)
}

// SubmitRateLimit caps how many leave requests one account may file per
// window. It must run after Auth.
func SubmitRateLimit(cfg config.AuthRateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return RateLimit(store, logg,
		RateRule{Scope: "leave-submit:user", Limit: cfg.SubmitLimit, Window: cfg.SubmitWindow, Key: ByUser},
	)
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, rule RateRule, subject string, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"scope":          rule.Scope,
			"subject":        subject,
			"attempts":       count,
			"limit":          rule.Limit,
			"window_seconds": int(rule.Window.Seconds()),
		}), "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

func ByClientIP(r *http.Request) (string, error) {
	return clientIP(r), nil
}

// ByUser keys on the authenticated user id.
func ByUser(r *http.Request) (string, error) {
	return UserIDFromContext(r.Context()), nil
}

// ByJSONField keys on a string field of the JSON body, hashed so raw
// identifiers never reach Redis or the logs. The body is restored for the
// next handler.
func ByJSONField(field string) KeyFunc {
	return func(r *http.Request) (string, error) {
		if r.Body == nil {
			return "", nil
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
		}
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

		var fields map[string]any
		if json.Unmarshal(body, &fields) != nil {
			return "", nil
		}
		value, _ := fields[field].(string)
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return "", nil
		}
		sum := sha256.Sum256([]byte(value))
		return hex.EncodeToString(sum[:]), nil
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
