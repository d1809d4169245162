// Package jwt verifies the bearer tokens the Bot Connector service attaches to
// inbound activities.
package jwt

import (
	"context"
	"fmt"

	jwtgo "github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/utils"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned for any header that does not carry a valid token.
var ErrUnauthorized = errors.New("unauthorized")

const botFrameworkIssuer = "https://api.botframework.com"

// ChannelVerifier validates RS256 channel tokens: signature, expiry, audience
// (the bot's app id) and issuer.
type ChannelVerifier struct {
	appID   string
	issuers map[string]bool
	keys    *KeyCache
	parser  *jwtgo.Parser
	logger  *zap.Logger
}

func NewChannelVerifier(appID, tenantID string, keys *KeyCache) *ChannelVerifier {
	issuers := map[string]bool{botFrameworkIssuer: true}
	if tenantID != "" {
		issuers[fmt.Sprintf("https://sts.windows.net/%s/", tenantID)] = true
		issuers[fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", tenantID)] = true
	}
	return &ChannelVerifier{
		appID:   appID,
		issuers: issuers,
		keys:    keys,
		parser:  &jwtgo.Parser{ValidMethods: []string{jwtgo.SigningMethodRS256.Alg()}},
		logger:  logs.GetLogger("channel_auth"),
	}
}

// Authenticate checks the Authorization header value of an inbound request.
func (v *ChannelVerifier) Authenticate(ctx context.Context, authHeader string) error {
	raw, ok := utils.BearerToken(authHeader)
	if !ok {
		v.logger.Warn("missing bearer token")
		return ErrUnauthorized
	}

	claims := jwtgo.MapClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwtgo.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		v.logger.Warn("channel token rejected", logs.ErrorInfo(err))
		return errors.Wrap(ErrUnauthorized, err.Error())
	}

	if !claims.VerifyAudience(v.appID, true) {
		v.logger.Warn("channel token audience mismatch")
		return errors.Wrap(ErrUnauthorized, "audience mismatch")
	}
	iss, _ := claims["iss"].(string)
	if !v.issuers[iss] {
		v.logger.Warn("channel token issuer rejected", logs.String("iss", iss))
		return errors.Wrap(ErrUnauthorized, "issuer not trusted")
	}
	return nil
}
