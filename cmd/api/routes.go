package main

import (
	"callrelay/internal/config"
	"callrelay/internal/sms"
	"callrelay/internal/telephony"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
//
// The returned cleanup stops background goroutines owned by the routes.
func registerRoutes(r *gin.Engine, cfg config.Config) func() {
	sender := sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	h := telephony.WebhookHandler{Cfg: cfg, SMS: sender}

	limiter := telephony.NewCallerRateLimiter(telephony.DefaultRateLimiterConfig())

	webhooks := r.Group("/")
	// Signature validation runs first so forged requests cannot drain a
	// caller's rate-limit bucket.
	if cfg.Twilio.ValidateSignature {
		webhooks.Use(telephony.RequireTwilioSignature(cfg.SignatureKey()))
	}
	webhooks.Use(telephony.RateLimit(limiter, h))
	{
		webhooks.POST("/", h.HandleIncomingCall)
		webhooks.POST("/incoming", h.HandleIncomingCall)
		webhooks.POST("/dial-status", h.HandleDialResult)
	}

	// Liveness (GET/HEAD on any path) and POST 404s share one fallback.
	r.NoRoute(telephony.NotFoundHandler)

	return limiter.Stop
}
