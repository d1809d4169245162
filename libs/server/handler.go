package server

import (
	"github.com/labstack/echo/v4"
)

// Handler binds and validates a Req before calling Func. Resp is passed as a
// zero value for the handler to fill in.
type Handler[Req any, Resp any] struct {
	Name string
	Tags []string
	Func func(echo.Context, Req, Resp) error
}

// 抽象接口
type IHandler interface {
	GetName() string
	GetTags() []string
	GetFunc() func(echo.Context) error
}

func NewHandler[Req any, Resp any](
	name string,
	tags []string,
	f func(echo.Context, Req, Resp) error,
) *Handler[Req, Resp] {
	return &Handler[Req, Resp]{
		Name: name,
		Tags: tags,
		Func: f,
	}
}

func (h *Handler[Req, Resp]) GetName() string {
	return h.Name
}

func (h *Handler[Req, Resp]) GetTags() []string {
	return h.Tags
}

func (h *Handler[Req, Resp]) GetFunc() func(echo.Context) error {
	return func(c echo.Context) error {
		var req Req
		var resp Resp
		// 绑定
		if err := c.Bind(&req); err != nil {
			return err
		}
		// 验证
		if err := c.Validate(&req); err != nil {
			return err
		}
		// 执行体
		return h.Func(c, req, resp)
	}
}

// NativeHandler adapts a plain echo.HandlerFunc to IHandler for endpoints
// that read the raw request themselves.
type NativeHandler struct {
	Name string
	Tags []string
	Func echo.HandlerFunc
}

func NewNativeHandler(name string, tags []string, f echo.HandlerFunc) *NativeHandler {
	return &NativeHandler{Name: name, Tags: tags, Func: f}
}

func (h *NativeHandler) GetName() string { return h.Name }

func (h *NativeHandler) GetTags() []string { return h.Tags }

func (h *NativeHandler) GetFunc() func(echo.Context) error { return h.Func }
