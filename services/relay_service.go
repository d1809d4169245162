package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stardustagi/TopRelay/api"
	"github.com/stardustagi/TopRelay/bot"
	"github.com/stardustagi/TopRelay/libs/connector"
	"github.com/stardustagi/TopRelay/libs/jwt"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/libs/option"
	"github.com/stardustagi/TopRelay/libs/server"
	"github.com/stardustagi/TopRelay/llm/clients"
	"github.com/stardustagi/TopRelay/settings"
)

// RelayService wires settings, the completion client, the bot and the HTTP
// backend together.
type RelayService struct {
	BaseService
	http     *option.Http
	settings *settings.Settings

	llm     *clients.CompletionClient
	backend *server.Backend
	errCh   chan error
}

func NewRelayService(http *option.Http, s *settings.Settings) *RelayService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RelayService{
		BaseService: BaseService{
			logger: logs.GetLogger("relay_service"),
			ctx:    ctx,
			cancel: cancel,
		},
		http:     http,
		settings: s,
		errCh:    make(chan error, 1),
	}
}

func (s *RelayService) Init() error {
	llm, err := clients.NewCompletionClient(clients.CompletionConfig{
		Token:       s.settings.DatabricksToken,
		BaseURL:     s.settings.DatabricksBaseURL,
		Model:       s.settings.DatabricksModelName,
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
		Timeout:     s.settings.RequestTimeout,
	})
	if err != nil {
		return err
	}

	adapter := bot.NewAdapter(s.authenticator(), connector.NewClient(s.tokenSource(), nil))
	relay := bot.NewRelayBot(llm, s.settings.SystemPrompt)

	backend, err := server.NewBackend(s.http)
	if err != nil {
		return errors.Wrap(err, "http backend")
	}
	backend.AddPostHandler(api.MessagesHandler(adapter, relay))
	backend.AddGetHandler(api.HealthHandler(Version, llm.Model()))

	s.llm = llm
	s.backend = backend
	s.logger.Info("relay initialised",
		logs.String("model", llm.Model()),
		logs.String("endpoint", llm.Endpoint()),
		logs.String("messages", backend.RoutePath(api.MessagesPath)),
		logs.Bool("bypass_auth", s.settings.BypassAuthentication))
	return nil
}

func (s *RelayService) authenticator() bot.Authenticator {
	if s.settings.BypassAuthentication {
		s.logger.Warn("channel authentication is bypassed")
		return bot.BypassAuth{}
	}
	keys := jwt.NewKeyCache(jwt.BotFrameworkOpenIDURL, nil)
	return jwt.NewChannelVerifier(s.settings.MicrosoftAppID, s.settings.MicrosoftAppTenantID, keys)
}

func (s *RelayService) tokenSource() connector.TokenSource {
	if s.settings.BypassAuthentication || s.settings.MicrosoftAppPassword == "" {
		return connector.NoToken{}
	}
	return connector.NewAppCredentials(
		s.settings.MicrosoftAppID,
		s.settings.MicrosoftAppPassword,
		s.settings.MicrosoftAppTenantID,
		nil)
}

// Backend is nil until Init succeeds.
func (s *RelayService) Backend() *server.Backend {
	return s.backend
}

// Start serves HTTP on a goroutine. Errors from the listener are reported by
// Done.
func (s *RelayService) Start() error {
	if s.backend == nil {
		return errors.New("relay service is not initialised")
	}
	if s.IsRunning() {
		return nil
	}
	s.setRunning(true)
	go func() {
		err := s.backend.Start()
		s.setRunning(false)
		if err != nil {
			s.logger.Error("http server stopped", logs.ErrorInfo(err))
		}
		s.errCh <- err
		s.cancel()
	}()
	return nil
}

// Done is closed once the service stops for any reason.
func (s *RelayService) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Err returns the listener error after Done, if any.
func (s *RelayService) Err() error {
	select {
	case err := <-s.errCh:
		return err
	default:
		return nil
	}
}

func (s *RelayService) Stop() {
	if s.backend != nil && s.IsRunning() {
		s.backend.Stop()
	}
	if s.llm != nil {
		_ = s.llm.Close()
	}
	s.setRunning(false)
	s.cancel()
}
