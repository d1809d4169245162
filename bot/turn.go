package bot

import (
	"context"
	"sync"

	"github.com/stardustagi/TopRelay/protocol"
)

// Replier delivers reply text to the conversation an activity came from.
type Replier interface {
	ReplyToActivity(ctx context.Context, in *protocol.Activity, text string) (string, error)
}

// TurnContext carries one inbound activity and the means to answer it.
type TurnContext struct {
	ctx      context.Context
	Activity *protocol.Activity
	replier  Replier

	mu   sync.Mutex
	sent []string
}

func NewTurnContext(ctx context.Context, activity *protocol.Activity, replier Replier) *TurnContext {
	return &TurnContext{ctx: ctx, Activity: activity, replier: replier}
}

func (t *TurnContext) Context() context.Context { return t.ctx }

// SendText posts text as a reply to the turn's activity.
func (t *TurnContext) SendText(text string) error {
	if _, err := t.replier.ReplyToActivity(t.ctx, t.Activity, text); err != nil {
		return err
	}
	t.mu.Lock()
	t.sent = append(t.sent, text)
	t.mu.Unlock()
	return nil
}

// Sent returns the texts delivered during this turn, in order.
func (t *TurnContext) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}
