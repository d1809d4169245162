// Package connector posts reply activities back to the Bot Connector service
// named by the inbound activity's serviceUrl.
package connector

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/protocol"
	"go.uber.org/zap"
	"resty.dev/v3"
)

type ResourceResponse struct {
	ID string `json:"id"`
}

type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger
}

func NewClient(tokens TokenSource, http *resty.Client) *Client {
	if tokens == nil {
		tokens = NoToken{}
	}
	if http == nil {
		http = resty.New()
	}
	return &Client{
		http:   http,
		tokens: tokens,
		logger: logs.GetLogger("connector"),
	}
}

// ReplyToActivity sends text as a reply to in and returns the id assigned by
// the channel.
func (c *Client) ReplyToActivity(ctx context.Context, in *protocol.Activity, text string) (string, error) {
	endpoint, err := activitiesURL(in)
	if err != nil {
		return "", err
	}
	reply := protocol.NewReply(in, text)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", errors.Wrap(err, "connector token")
	}

	var out ResourceResponse
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reply).
		SetResult(&out)
	if token != "" {
		req.SetAuthToken(token)
	}
	resp, err := req.Post(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "POST %s", endpoint)
	}
	if resp.IsError() {
		return "", errors.Errorf("connector returned %s", resp.Status())
	}

	c.logger.Debug("reply delivered",
		logs.String("conversation", in.Conversation.ID),
		logs.String("activity", out.ID))
	return out.ID, nil
}

func activitiesURL(in *protocol.Activity) (string, error) {
	if in.ServiceURL == "" {
		return "", errors.New("activity has no serviceUrl")
	}
	if in.Conversation == nil || in.Conversation.ID == "" {
		return "", errors.New("activity has no conversation id")
	}
	base := strings.TrimRight(in.ServiceURL, "/")
	path := "/v3/conversations/" + url.PathEscape(in.Conversation.ID) + "/activities"
	if in.ID != "" {
		path += "/" + url.PathEscape(in.ID)
	}
	return base + path, nil
}
