package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/libs/option"
	"go.uber.org/zap"
)

// Backend is the HTTP surface of a service: handlers are registered by name
// under {http.path}/api.
type Backend struct {
	Logger     *zap.Logger
	httpServer *HttpServer
}

func NewBackend(opts *option.Http) (*Backend, error) {
	httpServer, err := NewHttpServer(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Logger:     logs.GetLogger("http_backend"),
		httpServer: httpServer,
	}, nil
}

func (m *Backend) AddPostHandler(h IHandler) {
	m.httpServer.Post(h.GetName(), h)
}

func (m *Backend) AddGetHandler(h IHandler) {
	m.httpServer.Get(h.GetName(), h)
}

func (m *Backend) AddHandler(method, path string, h IHandler) {
	m.httpServer.Handle(method, path, h)
}

// ServeHTTP lets the backend be driven directly by httptest.
func (m *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServer.Engine().ServeHTTP(w, r)
}

func (m *Backend) Engine() *echo.Echo {
	return m.httpServer.Engine()
}

func (m *Backend) RoutePath(path string) string {
	return m.httpServer.RoutePath(path)
}

func (m *Backend) Start() error {
	return m.httpServer.Startup()
}

func (m *Backend) Stop() {
	m.httpServer.Stop()
}
