package protocol

import (
	"time"

	"github.com/google/uuid"
)

// Activity types handled by the relay.
const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"
	ActivityTypeTyping             = "typing"
)

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID               string `json:"id" validate:"required"`
	Name             string `json:"name,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
}

// Activity is the subset of the Bot Framework activity schema the relay reads
// and writes.
type Activity struct {
	Type         string               `json:"type" validate:"required"`
	ID           string               `json:"id,omitempty"`
	Timestamp    *time.Time           `json:"timestamp,omitempty"`
	ServiceURL   string               `json:"serviceUrl,omitempty"`
	ChannelID    string               `json:"channelId,omitempty"`
	From         *ChannelAccount      `json:"from,omitempty"`
	Conversation *ConversationAccount `json:"conversation,omitempty"`
	Recipient    *ChannelAccount      `json:"recipient,omitempty"`
	TextFormat   string               `json:"textFormat,omitempty"`
	Locale       string               `json:"locale,omitempty"`
	Text         string               `json:"text,omitempty"`
	ReplyToID    string               `json:"replyToId,omitempty"`
	MembersAdded []ChannelAccount     `json:"membersAdded,omitempty"`
}

// NewReply builds an outbound message activity answering in. Sender and
// recipient are swapped and the conversation is kept.
func NewReply(in *Activity, text string) *Activity {
	now := time.Now().UTC()
	return &Activity{
		Type:         ActivityTypeMessage,
		ID:           uuid.NewString(),
		Timestamp:    &now,
		ServiceURL:   in.ServiceURL,
		ChannelID:    in.ChannelID,
		From:         in.Recipient,
		Recipient:    in.From,
		Conversation: in.Conversation,
		TextFormat:   "plain",
		Locale:       in.Locale,
		Text:         text,
		ReplyToID:    in.ID,
	}
}
