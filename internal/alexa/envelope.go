// Package alexa holds the voice-assistant request and response envelopes.
package alexa

import "strings"

// Request types sent by the voice platform.
const (
	TypeLaunch       = "LaunchRequest"
	TypeIntent       = "IntentRequest"
	TypeSessionEnded = "SessionEndedRequest"
)

// Request is an inbound conversational turn.
type Request struct {
	Version string         `json:"version"`
	Session RequestSession `json:"session"`
	Request RequestBody    `json:"request"`
}

type RequestSession struct {
	New        bool           `json:"new"`
	SessionID  string         `json:"sessionId"`
	Attributes map[string]any `json:"attributes"`
	User       User           `json:"user"`
}

type User struct {
	UserID string `json:"userId"`
}

type RequestBody struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp"`
	Intent    *Intent `json:"intent,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SlotValue returns the trimmed value of a slot, or "" when it was not filled.
func (i *Intent) SlotValue(name string) string {
	if i == nil {
		return ""
	}
	return strings.TrimSpace(i.Slots[name].Value)
}

// Response is the reply to one conversational turn.
type Response struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes"`
	Response          ResponseBody   `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Say builds a plain-text reply carrying the given session forward.
func Say(text string, s Session, end bool) Response {
	return Response{
		Version:           "1.0",
		SessionAttributes: s.Attributes(),
		Response: ResponseBody{
			OutputSpeech:     &OutputSpeech{Type: "PlainText", Text: text},
			ShouldEndSession: end,
		},
	}
}

// End builds a silent reply that closes the session.
func End() Response {
	return Response{
		Version:           "1.0",
		SessionAttributes: map[string]any{},
		Response:          ResponseBody{ShouldEndSession: true},
	}
}
