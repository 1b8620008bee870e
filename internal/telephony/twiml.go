package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

// TwiML is a minimal Twilio Markup Language response builder.
// It intentionally avoids any provider SDK dependency.
//
// Only include primitives we need at the adapter boundary.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

// Say speaks text to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Dial bridges the caller to Number and reports the outcome to Action.
type Dial struct {
	XMLName xml.Name `xml:"Dial"`
	Timeout int      `xml:"timeout,attr,omitempty"`
	Action  string   `xml:"action,attr,omitempty"`
	Method  string   `xml:"method,attr,omitempty"`
	Number  string   `xml:"Number,omitempty"`
}

// Pause waits Length seconds before the next verb.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// DefaultVoice matches the voice the service has always answered with.
const DefaultVoice = "alice"

// RenderTwiML serializes verbs inside a single <Response> element, always
// prefixed with the standard XML declaration.
func RenderTwiML(verbs ...any) ([]byte, error) {
	if len(verbs) == 0 {
		return nil, errors.New("telephony: at least one verb required")
	}
	r := twimlResponse{Verbs: verbs}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EnsureDeclaration prepends the standard XML declaration to a markup fragment
// that lacks one. Fragments that already declare themselves pass through
// untouched.
func EnsureDeclaration(fragment []byte) []byte {
	trimmed := bytes.TrimLeft(fragment, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return fragment
	}
	out := make([]byte, 0, len(xml.Header)+len(fragment))
	out = append(out, xml.Header...)
	return append(out, fragment...)
}

// normalizePhone trims whitespace only. Twilio sometimes sends "anonymous" or
// empty; keep as-is.
func normalizePhone(s string) string {
	return strings.TrimSpace(s)
}
