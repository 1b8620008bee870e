package telephony

import (
	"net/http"

	"callrelay/internal/config"
	"callrelay/internal/routing"
	"callrelay/internal/sms"
	"callrelay/pkg/logger"

	"github.com/gin-gonic/gin"
)

const contentTypeXML = "application/xml"

// fallbackTwiML is written if rendering ever fails. The carrier must always
// receive well-formed markup with a 200; anything else makes Twilio play its
// own generic error message to a live caller.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?>
<Response><Hangup></Hangup></Response>`

// WebhookHandler is the call-routing state machine behind the two Twilio
// voice webhooks. It holds no per-call state: every decision is made from the
// immutable config plus the fields Twilio embeds in each request.
type WebhookHandler struct {
	Cfg config.Config
	SMS sms.Sender
}

// HandleIncomingCall answers the first webhook of a call: forward to the owner
// when forwarding is configured, otherwise speak the decline line and hang up.
func (h WebhookHandler) HandleIncomingCall(c *gin.Context) {
	log := logger.FromGin(c)

	form := ParseIncomingCall(c.Request)
	decision := routing.DecideInboundCall(h.Cfg)

	switch decision.Action {
	case routing.ActionForward:
		log.Info("forwarding inbound call",
			"call_sid", form.CallSid, "from", form.From, "to", decision.ForwardTo)
		h.writeTwiML(c,
			Say{Voice: DefaultVoice, Text: h.Cfg.Routing.HoldMessage},
			Dial{
				Timeout: decision.TimeoutSeconds,
				Action:  decision.ActionURL,
				Method:  http.MethodPost,
				Number:  decision.ForwardTo,
			},
		)
	default:
		log.Warn("declining inbound call",
			"call_sid", form.CallSid, "from", form.From, "reason", decision.Reason)
		h.writeDecline(c)
	}
}

// HandleDialResult answers the action callback of the <Dial> verb. A dial that
// did not complete triggers the missed-call recovery SMS fan-out before the
// closing markup is written.
func (h WebhookHandler) HandleDialResult(c *gin.Context) {
	log := logger.FromGin(c)

	form := ParseDialResult(c.Request)

	if routing.Missed(form.DialCallStatus) {
		log.Info("call missed",
			"call_sid", form.CallSid, "dial_call_sid", form.DialCallSid,
			"dial_status", form.DialCallStatus, "from", form.From)

		// Each notification stands alone: a failed caller SMS must not stop
		// the owner SMS, and neither may delay the markup past the sender's
		// bounded timeout.
		for _, n := range routing.PlanRecovery(h.Cfg, form.From) {
			outcome := h.SMS.Send(c.Request.Context(), n.To, n.Body)
			switch outcome.Status {
			case sms.StatusSent:
				log.Info("recovery sms sent", "to", n.To, "http_status", outcome.HTTPStatus)
			case sms.StatusSkipped:
				log.Info("recovery sms skipped", "to", n.To, "reason", outcome.Detail)
			default:
				log.Error("recovery sms failed", "to", n.To, "detail", outcome.Detail)
			}
		}
	} else {
		log.Info("call completed", "call_sid", form.CallSid, "dial_call_sid", form.DialCallSid)
	}

	h.writeTwiML(c,
		Say{Voice: DefaultVoice, Text: h.Cfg.Routing.GoodbyeMessage},
		Hangup{},
	)
}

// writeDecline speaks the decline line and hangs up.
func (h WebhookHandler) writeDecline(c *gin.Context) {
	h.writeTwiML(c,
		Say{Voice: DefaultVoice, Text: h.Cfg.Routing.DeclineMessage},
		Hangup{},
	)
}

func (h WebhookHandler) writeTwiML(c *gin.Context, verbs ...any) {
	body, err := RenderTwiML(verbs...)
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		body = []byte(fallbackTwiML)
	}
	c.Data(http.StatusOK, contentTypeXML, EnsureDeclaration(body))
}

// NotFoundHandler doubles as the liveness probe. Hosting platforms health
// check with GET or HEAD on arbitrary paths; those must answer 200 without
// touching config or call logic. Unrecognized POSTs are a plain 404.
func NotFoundHandler(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet:
		c.String(http.StatusOK, "ok")
	case http.MethodHead:
		c.Status(http.StatusOK)
	default:
		c.String(http.StatusNotFound, "Not found")
	}
}
