package api

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"todo-service/internal/access"
	"todo-service/internal/apperr"
	"todo-service/internal/service"
)

const callerKey = "caller"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Token authentication attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// extractToken looks at the token header, then a bearer Authorization
// header, then the token query parameter.
func extractToken(c *fiber.Ctx) string {
	if token := c.Get("token"); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}

	return c.Query("token")
}

// AuthMiddleware resolves the request's token to a caller and stores it in
// the request locals.
func AuthMiddleware(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		token := extractToken(c)

		slog.InfoContext(ctx, "Auth attempt",
			slog.String("path", c.Path()), slog.Bool("token_present", token != ""))

		user, err := authService.Authenticate(ctx, token)
		if err != nil {
			outcome := "invalid"
			if token == "" {
				outcome = "missing"
			} else if apperr.KindOf(err) == apperr.KindInternal {
				outcome = "error"
			}
			authAttempts.WithLabelValues(outcome).Inc()

			slog.WarnContext(ctx, "Auth failed",
				slog.String("path", c.Path()),
				slog.String("outcome", outcome),
				slog.String("token_prefix", service.TokenPrefix(token)))

			return respondError(c, err)
		}

		authAttempts.WithLabelValues("success").Inc()
		slog.InfoContext(ctx, "Auth succeeded", slog.String("path", c.Path()), slog.Int64("user_id", user.ID))

		c.Locals(callerKey, access.Caller{ID: user.ID, Role: user.Role})

		return c.Next()
	}
}

// AdminMiddleware is the role gate. It must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var callerPtr *access.Caller
		if caller, ok := GetCaller(c); ok {
			callerPtr = &caller
		}

		if err := access.RequireAdmin(callerPtr); err != nil {
			slog.WarnContext(c.UserContext(), "Admin access denied",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			return respondError(c, err)
		}

		return c.Next()
	}
}

func GetCaller(c *fiber.Ctx) (access.Caller, bool) {
	caller, ok := c.Locals(callerKey).(access.Caller)
	return caller, ok
}

// mustCaller returns the caller bound by AuthMiddleware, or an
// Unauthenticated error if the route was wired without it.
func mustCaller(c *fiber.Ctx) (access.Caller, error) {
	caller, ok := GetCaller(c)
	if !ok || caller.ID == 0 {
		return access.Caller{}, apperr.Unauthenticated(service.MsgCallerMissing)
	}
	return caller, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		// Route pattern, not the raw path.
		path := c.Route().Path
		statusStr := strconv.Itoa(statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
