package server

import (
	"context"

	"github.com/stardustagi/TopRelay/libs/logs"
	"github.com/stardustagi/TopRelay/utils"
	"go.uber.org/zap"
)

// Server owns the process lifetime: Ctx is cancelled once a shutdown signal
// arrives or Shutdown is called.
type Server struct {
	Ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	doneCh chan struct{}
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Ctx:    ctx,
		cancel: cancel,
		logger: logs.GetLogger("Server"),
		doneCh: utils.MakeShutdownCh(),
	}
}

// HandleSignal blocks until SIGINT/SIGTERM or Shutdown, then cancels Ctx.
func (m *Server) HandleSignal() {
	select {
	case <-m.doneCh:
		m.logger.Info("server shutting...")
	case <-m.Ctx.Done():
	}
	m.cancel()
	m.logger.Info("server shutdown completed")
}

func (m *Server) Shutdown() {
	m.cancel()
}
