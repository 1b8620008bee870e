// Package sms dispatches outbound SMS messages through the Twilio Messages
// REST API using stdlib net/http only, no SDK dependency.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// Sender is the interface the webhook handlers depend on. Keeping it minimal
// means backends are trivially swappable and tests can count dispatches.
type Sender interface {
	Send(ctx context.Context, to, body string) Outcome
}

// Status classifies one dispatch attempt.
type Status string

const (
	// StatusSent means Twilio accepted the message.
	StatusSent Status = "sent"

	// StatusSkipped means no network call was made because messaging is not
	// configured or the recipient was empty. Deliberately not an error:
	// environments without SMS credentials stay quiet instead of noisy.
	StatusSkipped Status = "skipped"

	// StatusFailed means the network call was attempted and did not succeed.
	StatusFailed Status = "failed"
)

// Outcome describes one dispatch attempt. Send never returns a Go error; the
// caller decides what an outcome is worth logging.
type Outcome struct {
	Status     Status
	HTTPStatus int

	// Detail holds the carrier response body on success, the error text on
	// failure, or the skip reason.
	Detail string
}

func (o Outcome) Sent() bool { return o.Status == StatusSent }

// TwilioSender posts form-encoded messages with Basic auth.
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string

	httpClient *http.Client

	// endpoint is a fmt template keyed by account SID; tests point it at a
	// local server.
	endpoint string
}

func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   defaultEndpoint,
	}
}

// Send dispatches one SMS. Misconfiguration or an empty recipient short
// circuits to a skipped outcome before any network activity.
func (s *TwilioSender) Send(ctx context.Context, to, body string) Outcome {
	switch {
	case s.accountSID == "" || s.authToken == "" || s.fromNumber == "":
		return Outcome{Status: StatusSkipped, Detail: "messaging not configured"}
	case strings.TrimSpace(to) == "":
		return Outcome{Status: StatusSkipped, Detail: "empty recipient"}
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf(s.endpoint, url.PathEscape(s.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{Status: StatusFailed, Detail: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Outcome{Status: StatusFailed, Detail: fmt.Sprintf("http post: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Outcome{
			Status:     StatusFailed,
			HTTPStatus: resp.StatusCode,
			Detail:     fmt.Sprintf("twilio returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	return Outcome{Status: StatusSent, HTTPStatus: resp.StatusCode, Detail: string(respBody)}
}
