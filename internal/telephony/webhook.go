package telephony

import (
	"net/http"
)

// Twilio sends voice webhooks as application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// Decoding is deliberately best-effort: a body we cannot parse yields a
// zero-value form, not an error. The caller is a live phone call; the carrier
// must always get markup back, so missing fields degrade to empty strings.

// IncomingCallForm captures the subset of the inbound voice webhook we use.
type IncomingCallForm struct {
	CallSid string
	From    string
	To      string
}

// DialResultForm captures the dial action callback posted after a <Dial>.
type DialResultForm struct {
	CallSid        string
	From           string
	DialCallStatus string

	// DialCallSid identifies the forwarded leg.
	DialCallSid string
}

func ParseIncomingCall(r *http.Request) IncomingCallForm {
	_ = r.ParseForm()
	return IncomingCallForm{
		CallSid: r.PostFormValue("CallSid"),
		From:    normalizePhone(r.PostFormValue("From")),
		To:      normalizePhone(r.PostFormValue("To")),
	}
}

func ParseDialResult(r *http.Request) DialResultForm {
	_ = r.ParseForm()
	return DialResultForm{
		CallSid:        r.PostFormValue("CallSid"),
		From:           normalizePhone(r.PostFormValue("From")),
		DialCallStatus: r.PostFormValue("DialCallStatus"),
		DialCallSid:    r.PostFormValue("DialCallSid"),
	}
}
