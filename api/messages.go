// Package api holds the HTTP endpoints of the relay.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/bot"
	"github.com/stardustagi/TopRelay/codec"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/libs/server"
	"github.com/stardustagi/TopRelay/protocol"
	"github.com/stardustagi/TopRelay/utils"
)

const (
	MessagesPath = "messages"
	HealthPath   = "health"

	unsupportedMediaType = "Expecting application/json content"
	invalidJSON          = "Invalid JSON payload"
)

// ActivityProcessor is satisfied by *bot.Adapter.
type ActivityProcessor interface {
	ProcessActivity(ctx context.Context, activity *protocol.Activity, authHeader string, h bot.Handler) error
}

// MessagesHandler accepts channel activities on POST {path}/api/messages.
func MessagesHandler(adapter ActivityProcessor, h bot.Handler) server.IHandler {
	activityCodec := codec.NewJsonCodec[protocol.Activity]()
	logger := logs.GetLogger("api_messages")

	return server.NewNativeHandler(MessagesPath, []string{"bot"}, func(c echo.Context) error {
		req := c.Request()
		if !utils.IsJSONContentType(req.Header.Get(echo.HeaderContentType)) {
			return c.String(http.StatusUnsupportedMediaType, unsupportedMediaType)
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			return c.String(http.StatusBadRequest, invalidJSON)
		}
		activity, err := activityCodec.Decode(body)
		if err != nil {
			logger.Debug("rejecting payload", logs.ErrorInfo(err))
			return c.String(http.StatusBadRequest, invalidJSON)
		}
		if err := c.Validate(activity); err != nil {
			return err
		}

		err = adapter.ProcessActivity(req.Context(), activity, req.Header.Get(echo.HeaderAuthorization), h)
		switch {
		case err == nil:
			return c.NoContent(http.StatusCreated)
		case errors.Is(err, bot.ErrUnauthorized):
			logger.Warn("unauthorized activity",
				logs.String("remote", server.NewContext(c).RemoteAddr),
				logs.ErrorInfo(err))
			return echo.NewHTTPError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		default:
			return err
		}
	})
}
