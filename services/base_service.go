package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Version is reported by --version and the health endpoint.
const Version = "1.0.0"

// Service 接口
// 统一所有服务的行为
type Service interface {
	Init() error
	Start() error
	Stop()
	IsRunning() bool
}

type BaseService struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	isRun bool
}

func (bs *BaseService) IsRunning() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.isRun
}

func (bs *BaseService) setRunning(v bool) {
	bs.mu.Lock()
	bs.isRun = v
	bs.mu.Unlock()
}
