package routing

// Decision is the pure output of the routing rules.
//
// It must contain *only* information required for the provider adapter boundary
// (the TwiML builder) to execute the decision.
//
// No provider-specific fields belong here.

type Decision struct {
	Action Action `json:"action"`

	// ForwardTo, ActionURL and TimeoutSeconds are set when Action == forward.
	ForwardTo      string `json:"forward_to,omitempty"`
	ActionURL      string `json:"action_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`

	// Reason is intended for internal logs.
	Reason string `json:"reason,omitempty"`
}

type Action string

const (
	ActionForward Action = "forward"
	ActionDecline Action = "decline"
)

// Notification is one SMS the recovery flow wants dispatched.
type Notification struct {
	To   string `json:"to"`
	Body string `json:"body"`
}
