package routing

import (
	"strings"

	"callrelay/internal/config"
)

// Dial outcomes Twilio reports in DialCallStatus.
const (
	DialStatusCompleted = "completed"
	DialStatusNoAnswer  = "no-answer"
	DialStatusBusy      = "busy"
	DialStatusFailed    = "failed"
)

// UnknownCaller substitutes for the {caller} placeholder when Twilio sends no
// caller number (anonymous or suppressed caller id).
const UnknownCaller = "unknown"

const dialStatusPath = "/dial-status"

// ForwardingConfigured reports whether the service knows where to forward
// inbound calls and where Twilio can post the dial result.
func ForwardingConfigured(cfg config.Config) bool {
	return cfg.Routing.OwnerNumber != "" && cfg.Routing.BaseURL != ""
}

// MessagingConfigured reports whether outbound SMS can be attempted at all.
func MessagingConfigured(cfg config.Config) bool {
	return cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" && cfg.Twilio.FromNumber != ""
}

// DecideInboundCall maps an incoming call to a forward or decline decision.
// Pure: same config always yields the same decision.
func DecideInboundCall(cfg config.Config) Decision {
	if !ForwardingConfigured(cfg) {
		return Decision{Action: ActionDecline, Reason: "forwarding not configured"}
	}
	return Decision{
		Action:         ActionForward,
		ForwardTo:      cfg.Routing.OwnerNumber,
		ActionURL:      ActionURL(cfg.Routing.BaseURL),
		TimeoutSeconds: int(cfg.Routing.DialTimeout.Seconds()),
	}
}

// ActionURL builds the dial-status callback URL from the public base URL.
func ActionURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + dialStatusPath
}

// Missed reports whether a dial outcome counts as a missed call.
// Anything other than the exact "completed" value is missed, including an
// empty status: an absent value must never suppress the recovery SMS.
func Missed(dialCallStatus string) bool {
	return dialCallStatus != DialStatusCompleted
}

// PlanRecovery returns the SMS notifications to attempt for a missed call.
// The caller-facing text is static; the owner-facing text interpolates the
// caller number. Each entry is dispatched independently by the handler.
func PlanRecovery(cfg config.Config, caller string) []Notification {
	var out []Notification

	if caller != "" {
		out = append(out, Notification{To: caller, Body: cfg.Routing.CallerSMSBody})
	}
	if cfg.Routing.OwnerNumber != "" {
		who := caller
		if who == "" {
			who = UnknownCaller
		}
		body := strings.ReplaceAll(cfg.Routing.OwnerSMSBody, "{caller}", who)
		out = append(out, Notification{To: cfg.Routing.OwnerNumber, Body: body})
	}
	return out
}
