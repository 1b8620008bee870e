package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Twilio  TwilioConfig
	Routing RoutingConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string

	// FromNumber is the Twilio-provisioned number SMS notifications are sent from.
	FromNumber string

	// WebhookSecret overrides AuthToken as the signature key when a proxy re-signs.
	WebhookSecret     string
	ValidateSignature bool
}

// RoutingConfig drives the inbound-call forwarding behavior.
//
// OwnerNumber and BaseURL are deliberately optional: when either is missing the
// service still boots and answers calls with the decline message, so a half
// configured deploy degrades instead of crash-looping.
type RoutingConfig struct {
	// OwnerNumber is the E.164 number inbound calls are forwarded to.
	OwnerNumber string

	// BaseURL is the public base URL Twilio can reach this service at.
	// Used to build the dial-status action callback.
	BaseURL string

	// DialTimeout is how long the forwarded leg rings before Twilio reports no-answer.
	DialTimeout time.Duration

	// SMS bodies for the missed-call recovery flow.
	// OwnerSMSBody may contain the {caller} placeholder.
	CallerSMSBody string
	OwnerSMSBody  string

	// Spoken lines.
	HoldMessage    string
	DeclineMessage string
	GoodbyeMessage string
}

const (
	defaultDialTimeout = 20 * time.Second

	defaultCallerSMSBody = "Sorry we missed your call. We will ring you back as soon as possible."
	defaultOwnerSMSBody  = "Missed call from {caller}."

	defaultHoldMessage    = "Please hold while we connect your call."
	defaultDeclineMessage = "We are unable to take your call right now. Please try again later."
	defaultGoodbyeMessage = "Sorry we missed you. Goodbye."
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.FromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))
	c.Twilio.WebhookSecret = os.Getenv("TWILIO_WEBHOOK_SECRET")
	c.Twilio.ValidateSignature = boolEnv("TWILIO_VALIDATE_SIGNATURE")

	c.Routing.OwnerNumber = strings.TrimSpace(os.Getenv("OWNER_NUMBER"))
	c.Routing.BaseURL = strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL"))
	c.Routing.DialTimeout = secondsEnv("DIAL_TIMEOUT_SECONDS", defaultDialTimeout)

	c.Routing.CallerSMSBody = stringEnv("CALLER_SMS_BODY", defaultCallerSMSBody)
	c.Routing.OwnerSMSBody = stringEnv("OWNER_SMS_BODY", defaultOwnerSMSBody)
	c.Routing.HoldMessage = stringEnv("HOLD_MESSAGE", defaultHoldMessage)
	c.Routing.DeclineMessage = stringEnv("DECLINE_MESSAGE", defaultDeclineMessage)
	c.Routing.GoodbyeMessage = stringEnv("GOODBYE_MESSAGE", defaultGoodbyeMessage)

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Routing.BaseURL != "" && !strings.HasPrefix(c.Routing.BaseURL, "http") {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an http(s) URL, got %q", c.Routing.BaseURL))
	}
	if c.Routing.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DIAL_TIMEOUT_SECONDS must be positive, got %s", c.Routing.DialTimeout))
	}

	if c.Twilio.ValidateSignature && c.SignatureKey() == "" {
		errs = append(errs, errors.New("TWILIO_VALIDATE_SIGNATURE requires TWILIO_AUTH_TOKEN or TWILIO_WEBHOOK_SECRET"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// SignatureKey is the secret used to verify X-Twilio-Signature.
// Twilio signs webhooks with the account auth token.
func (c Config) SignatureKey() string {
	if c.Twilio.WebhookSecret != "" {
		return c.Twilio.WebhookSecret
	}
	return c.Twilio.AuthToken
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func secondsEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func boolEnv(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
