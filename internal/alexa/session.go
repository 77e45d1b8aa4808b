package alexa

import "strings"

const attrPillName = "pill_name"

// Session is the conversation state the caller hands back on the next turn.
// It is a value: every change returns a new Session.
type Session struct {
	PillName string
}

// SessionFrom reads a Session out of request session attributes.
func SessionFrom(attrs map[string]any) Session {
	name, _ := attrs[attrPillName].(string)
	return Session{PillName: strings.TrimSpace(name)}
}

// WithPillName returns a copy of s carrying name.
func (s Session) WithPillName(name string) Session {
	s.PillName = name
	return s
}

// Attributes encodes s as response session attributes. Never nil.
func (s Session) Attributes() map[string]any {
	attrs := map[string]any{}
	if s.PillName != "" {
		attrs[attrPillName] = s.PillName
	}
	return attrs
}
