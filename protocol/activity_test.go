package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inbound = `{
	"type": "message",
	"id": "act-1",
	"serviceUrl": "https://smba.trafficmanager.net/amer/",
	"channelId": "msteams",
	"from": {"id": "user-1", "name": "Ada"},
	"recipient": {"id": "bot-1", "name": "relay"},
	"conversation": {"id": "conv-1"},
	"locale": "en-US",
	"text": "hi"
}`

func TestActivityDecode(t *testing.T) {
	var a Activity
	require.NoError(t, json.Unmarshal([]byte(inbound), &a))
	assert.Equal(t, ActivityTypeMessage, a.Type)
	assert.Equal(t, "conv-1", a.Conversation.ID)
	assert.Equal(t, "hi", a.Text)
}

func TestNewReply(t *testing.T) {
	var in Activity
	require.NoError(t, json.Unmarshal([]byte(inbound), &in))

	out := NewReply(&in, "hello back")
	assert.Equal(t, ActivityTypeMessage, out.Type)
	assert.Equal(t, "hello back", out.Text)
	assert.Equal(t, "act-1", out.ReplyToID)
	assert.Equal(t, "bot-1", out.From.ID)
	assert.Equal(t, "user-1", out.Recipient.ID)
	assert.Equal(t, "conv-1", out.Conversation.ID)
	assert.NotEmpty(t, out.ID)
	assert.NotNil(t, out.Timestamp)
}
