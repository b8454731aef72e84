package server

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/middleware"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/session"
	database "github.com/FACorreiaa/greengrove-accounts/internal/db"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/config"
	"github.com/FACorreiaa/greengrove-accounts/internal/routes"
)

const serviceName = "greengrove-accounts"

// SetupRouter configures the Gin router with all middleware and routes.
func SetupRouter(db database.Querier, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		SkipPaths:  []string{"/healthz", "/account/location"},
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware(serviceName))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.WorkspaceTTL.Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(session.CookieName, store))

	handlers := routes.NewAppHandlers(db, logger)
	reg := routes.NewRegistry(cfg, handlers, logger)
	routes.Setup(r, db, handlers, reg, logger)

	return r
}

// zapContextFunc adds the request id and the trace ids to access log lines.
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get(middleware.RequestIDHeader); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		return fields
	}
}
