package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/TopRelay/utils"
)

// Context decorates echo.Context with the caller's address and headers.
type Context struct {
	echo.Context
	RemoteAddr string
	Header     http.Header
}

func NewContext(c echo.Context) *Context {
	return &Context{
		Context:    c,
		RemoteAddr: utils.GetRemoteAddr(c.Request()),
		Header:     c.Request().Header,
	}
}
