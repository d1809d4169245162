// Package bot turns inbound channel activities into completion requests and
// sends the model's reply back to the conversation.
package bot

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/llm/clients"
	"github.com/stardustagi/TopRelay/llm/models"
	"github.com/stardustagi/TopRelay/protocol"
	"go.uber.org/zap"
)

const (
	PromptForInput = "Please send a text prompt and I'll do my best to help!"
	RequestFailed  = "I ran into an issue reaching Databricks just now. Please try again in a moment."
	Welcome        = "Hi! I'm your Databricks-backed copilot. Ask me anything about your data workflows."
)

// ReplyGenerator is satisfied by *clients.CompletionClient.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, messages []models.ChatMessage) (string, error)
}

type Handler interface {
	OnTurn(turn *TurnContext) error
}

// RelayBot answers each message with a single completion. It keeps no
// conversation history.
type RelayBot struct {
	llm          ReplyGenerator
	systemPrompt string
	logger       *zap.Logger
}

func NewRelayBot(llm ReplyGenerator, systemPrompt string) *RelayBot {
	return &RelayBot{
		llm:          llm,
		systemPrompt: systemPrompt,
		logger:       logs.GetLogger("relay_bot"),
	}
}

func (b *RelayBot) OnTurn(turn *TurnContext) error {
	switch turn.Activity.Type {
	case protocol.ActivityTypeMessage:
		return b.onMessage(turn)
	case protocol.ActivityTypeConversationUpdate:
		return b.onMembersAdded(turn)
	}
	b.logger.Debug("ignoring activity", logs.String("type", turn.Activity.Type))
	return nil
}

func (b *RelayBot) onMembersAdded(turn *TurnContext) error {
	var botID string
	if turn.Activity.Recipient != nil {
		botID = turn.Activity.Recipient.ID
	}
	for _, member := range turn.Activity.MembersAdded {
		if member.ID == botID {
			continue
		}
		if err := turn.SendText(Welcome); err != nil {
			return err
		}
	}
	return nil
}

func (b *RelayBot) onMessage(turn *TurnContext) error {
	userInput := strings.TrimSpace(turn.Activity.Text)
	if userInput == "" {
		return turn.SendText(PromptForInput)
	}

	reply, err := b.llm.GenerateReply(turn.Context(), models.Conversation(b.systemPrompt, userInput))
	if err != nil {
		var reqErr *clients.RequestError
		if !errors.As(err, &reqErr) {
			return err
		}
		b.logger.Error("unable to complete request",
			logs.String("kind", reqErr.Kind.String()),
			logs.ErrorInfo(err))
		return turn.SendText(RequestFailed)
	}
	return turn.SendText(reply)
}
