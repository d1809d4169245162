package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/libs/option"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type HttpServer struct {
	addr   string
	path   string
	logger *zap.Logger
	engine *echo.Echo
}

func NewHttpServer(opts *option.Http) (*HttpServer, error) {
	if opts.Path != "" && opts.Path[0] != '/' {
		return nil, errors.New("the http.path must start with a /")
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Validator = NewValidator()
	engine.Server.ReadTimeout = time.Duration(opts.ReadTimeout) * time.Second
	engine.Server.WriteTimeout = time.Duration(opts.WriteTimeout) * time.Second
	engine.Server.IdleTimeout = time.Duration(opts.IdleTimeout) * time.Second
	if opts.Cors {
		engine.Use(Cors())
	}
	if opts.RequestLog {
		engine.Use(Request())
	}
	if opts.Access {
		engine.Use(Access())
	}

	return &HttpServer{
		logger: logs.GetLogger("httpServer"),
		engine: engine,
		addr:   fmt.Sprintf("%s:%d", opts.Address, opts.Port),
		path:   opts.Path,
	}, nil
}

func (m *HttpServer) Engine() *echo.Echo {
	return m.engine
}

func (m *HttpServer) Addr() string {
	return m.addr
}

func (m *HttpServer) Use(middleware ...echo.MiddlewareFunc) *HttpServer {
	m.engine.Use(middleware...)
	return m
}

// Startup blocks serving requests until Stop is called.
func (m *HttpServer) Startup() error {
	m.logger.Info("http server listened on:", zap.String("addr", m.addr))
	// 打印路由
	for _, route := range m.engine.Routes() {
		m.logger.Info("http route registered:", logs.String("method", route.Method), logs.String("path", route.Path))
	}
	if err := m.engine.Start(m.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *HttpServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := m.engine.Shutdown(ctx); err != nil {
		m.logger.Error("shutdown http server:", zap.Error(err))
	}
}

// RoutePath returns the mounted path of an api endpoint.
func (m *HttpServer) RoutePath(path string) string {
	joined, err := url.JoinPath("/", m.path, "api", path)
	if err != nil {
		return "/api/" + path
	}
	return joined
}

// Handle registers a new route under {path}/api.
func (m *HttpServer) Handle(method string, path string, handler IHandler) {
	m.engine.Add(method, m.RoutePath(path), handler.GetFunc())
}

func (m *HttpServer) Get(path string, handler IHandler) {
	m.Handle(http.MethodGet, path, handler)
}

func (m *HttpServer) Post(path string, handler IHandler) {
	m.Handle(http.MethodPost, path, handler)
}
