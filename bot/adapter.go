package bot

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/protocol"
	"go.uber.org/zap"
)

// TurnFailed is sent when a turn ends with an unexpected error.
const TurnFailed = "Something went wrong and I've alerted the team."

// ErrUnauthorized wraps every authentication failure returned by ProcessActivity.
var ErrUnauthorized = errors.New("channel authentication failed")

// Authenticator checks the Authorization header of an inbound request.
type Authenticator interface {
	Authenticate(ctx context.Context, authHeader string) error
}

// BypassAuth accepts every request. Local debugging only.
type BypassAuth struct{}

func (BypassAuth) Authenticate(context.Context, string) error { return nil }

// Adapter authenticates inbound activities and runs them through a Handler.
type Adapter struct {
	auth    Authenticator
	replier Replier
	logger  *zap.Logger

	// OnTurnError runs when the handler fails or panics. The default logs the
	// error and tells the user something went wrong.
	OnTurnError func(turn *TurnContext, err error)
}

func NewAdapter(auth Authenticator, replier Replier) *Adapter {
	a := &Adapter{
		auth:    auth,
		replier: replier,
		logger:  logs.GetLogger("bot_adapter"),
	}
	a.OnTurnError = a.defaultTurnError
	return a
}

// ProcessActivity authenticates the request and runs one turn. Handler
// failures are reported to the conversation, not to the caller; only
// authentication errors are returned.
func (a *Adapter) ProcessActivity(ctx context.Context, activity *protocol.Activity, authHeader string, h Handler) error {
	if err := a.auth.Authenticate(ctx, authHeader); err != nil {
		return errors.Wrap(ErrUnauthorized, err.Error())
	}

	turn := NewTurnContext(ctx, activity, a.replier)
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("bot turn panicked", logs.String("panic", fmt.Sprint(r)), logs.StacktraceField())
			a.OnTurnError(turn, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := h.OnTurn(turn); err != nil {
		a.OnTurnError(turn, err)
	}
	return nil
}

func (a *Adapter) defaultTurnError(turn *TurnContext, err error) {
	a.logger.Error("unhandled bot error",
		logs.String("activity", turn.Activity.ID),
		logs.ErrorInfo(err))
	if sendErr := turn.SendText(TurnFailed); sendErr != nil {
		a.logger.Error("unable to report turn error", logs.ErrorInfo(sendErr))
	}
}
