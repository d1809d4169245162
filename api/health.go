package api

import (
	"github.com/labstack/echo/v4"
	"github.com/stardustagi/TopRelay/libs/server"
	"github.com/stardustagi/TopRelay/protocol"
)

type HealthReq struct{}

type HealthResp struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

// HealthHandler reports liveness on GET {path}/api/health.
func HealthHandler(version, model string) server.IHandler {
	return server.NewHandler(HealthPath, []string{"ops"},
		func(c echo.Context, _ HealthReq, resp HealthResp) error {
			resp.Status = "ok"
			resp.Version = version
			resp.Model = model
			return protocol.Response(c, nil, resp)
		})
}
