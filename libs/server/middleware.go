package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stardustagi/TopRelay/libs/logs"
)

// Cors allows any origin to call the API.
func Cors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	})
}

// Request logs every request at debug level before it is handled.
func Request() echo.MiddlewareFunc {
	logger := logs.GetLogger("http_request")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			logger.Debug("request",
				logs.String("method", req.Method),
				logs.String("uri", req.RequestURI),
				logs.String("content_type", req.Header.Get(echo.HeaderContentType)),
				logs.Int("content_length", int(req.ContentLength)))
			return next(c)
		}
	}
}

// Access writes one access log line per request once it completes.
func Access() echo.MiddlewareFunc {
	logger := logs.GetLogger("http_access")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ctx := NewContext(c)
			logger.Info("access",
				logs.String("remote", ctx.RemoteAddr),
				logs.String("method", c.Request().Method),
				logs.String("path", c.Path()),
				logs.Int("status", c.Response().Status),
				logs.Duration("latency", time.Since(start)))
			return nil
		}
	}
}
