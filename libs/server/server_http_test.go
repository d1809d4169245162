package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/TopRelay/libs/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type HelloReq struct {
	Name string `json:"name" validate:"required"`
}

type HelloResp struct {
	Message string `json:"message"`
}

func newTestBackend(t *testing.T, opts option.Http) *Backend {
	t.Helper()
	bk, err := NewBackend(&opts)
	require.NoError(t, err)
	bk.AddPostHandler(NewHandler(
		"hello",
		[]string{"greet"},
		func(ctx echo.Context, req HelloReq, resp HelloResp) error {
			resp.Message = "Hello " + req.Name
			return ctx.JSON(http.StatusOK, resp)
		},
	))
	return bk
}

func serve(bk *Backend, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	bk.ServeHTTP(rec, req)
	return rec
}

func TestHandler_BindAndValidate(t *testing.T) {
	bk := newTestBackend(t, option.Http{Address: "127.0.0.1", Port: 8080})

	rec := serve(bk, http.MethodPost, "/api/hello", `{"name":"relay"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello relay"}`, rec.Body.String())

	rec = serve(bk, http.MethodPost, "/api/hello", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")

	rec = serve(bk, http.MethodPost, "/api/hello", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RequestsDoNotShareState(t *testing.T) {
	bk := newTestBackend(t, option.Http{})

	first := serve(bk, http.MethodPost, "/api/hello", `{"name":"a"}`)
	second := serve(bk, http.MethodPost, "/api/hello", `{"name":"b"}`)
	assert.JSONEq(t, `{"message":"Hello a"}`, first.Body.String())
	assert.JSONEq(t, `{"message":"Hello b"}`, second.Body.String())
}

func TestNewHttpServer_Path(t *testing.T) {
	_, err := NewBackend(&option.Http{Path: "bot"})
	require.Error(t, err)

	bk := newTestBackend(t, option.Http{Path: "/bot/"})
	assert.Equal(t, "/bot/api/hello", bk.RoutePath("hello"))
	assert.Equal(t, http.StatusOK, serve(bk, http.MethodPost, "/bot/api/hello", `{"name":"x"}`).Code)
}

func TestNewHttpServer_Middleware(t *testing.T) {
	bk := newTestBackend(t, option.Http{Cors: true, Access: true, RequestLog: true})

	req := httptest.NewRequest(http.MethodOptions, "/api/hello", nil)
	req.Header.Set(echo.HeaderOrigin, "https://teams.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	bk.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = serve(bk, http.MethodPost, "/api/hello", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNativeHandler(t *testing.T) {
	bk, err := NewBackend(&option.Http{})
	require.NoError(t, err)
	bk.AddHandler(http.MethodPut, "raw", NewNativeHandler("raw", nil, func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	}))

	assert.Equal(t, http.StatusAccepted, serve(bk, http.MethodPut, "/api/raw", "").Code)
}

func TestContext_RemoteAddr(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	ctx := NewContext(e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, "10.0.0.1", ctx.RemoteAddr)
}

func TestServer_Shutdown(t *testing.T) {
	srv := NewServer()
	done := make(chan struct{})
	go func() {
		srv.HandleSignal()
		close(done)
	}()
	srv.Shutdown()
	<-done
	assert.Error(t, srv.Ctx.Err())
}
