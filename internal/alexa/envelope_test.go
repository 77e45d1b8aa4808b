package alexa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTurn = `{
  "version": "1.0",
  "session": {
    "new": false,
    "sessionId": "s-1",
    "attributes": {"pill_name": "Aspirin"},
    "user": {"userId": "amzn1.ask.account.X"}
  },
  "request": {
    "type": "IntentRequest",
    "requestId": "r-1",
    "intent": {
      "name": "SetPillTimeIntent",
      "slots": {
        "Color": {"name": "Color", "value": "red"},
        "Time": {"name": "Time", "value": " 08:00 "},
        "PillName": {"name": "PillName"}
      }
    }
  }
}`

func TestRequest_Decode(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(sampleTurn), &req))

	require.Equal(t, "amzn1.ask.account.X", req.Session.User.UserID)
	require.Equal(t, TypeIntent, req.Request.Type)
	require.Equal(t, "red", req.Request.Intent.SlotValue("Color"))
	require.Equal(t, "08:00", req.Request.Intent.SlotValue("Time"))
	require.Empty(t, req.Request.Intent.SlotValue("PillName"))
	require.Empty(t, req.Request.Intent.SlotValue("Missing"))
	require.Equal(t, Session{PillName: "Aspirin"}, SessionFrom(req.Session.Attributes))
}

func TestIntent_SlotValue_NilIntent(t *testing.T) {
	var i *Intent
	require.Empty(t, i.SlotValue("PillName"))
}

func TestSession_RoundTrip(t *testing.T) {
	s := Session{}.WithPillName("Aspirin")
	require.Equal(t, map[string]any{"pill_name": "Aspirin"}, s.Attributes())
	require.Equal(t, s, SessionFrom(s.Attributes()))

	require.NotNil(t, Session{}.Attributes())
	require.Empty(t, Session{}.Attributes())
	require.Equal(t, Session{}, SessionFrom(nil))
}

func TestSay_Shape(t *testing.T) {
	raw, err := json.Marshal(Say("hi", Session{PillName: "A"}, true))
	require.NoError(t, err)
	require.JSONEq(t, `{
	  "version": "1.0",
	  "sessionAttributes": {"pill_name": "A"},
	  "response": {"outputSpeech": {"type": "PlainText", "text": "hi"}, "shouldEndSession": true}
	}`, string(raw))
}

func TestEnd_HasNoSpeech(t *testing.T) {
	resp := End()
	require.Nil(t, resp.Response.OutputSpeech)
	require.True(t, resp.Response.ShouldEndSession)
}
