package protocol

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 返回定义
type BaseResponse struct {
	ErrCode int         `json:"errcode"`
	ErrMsg  string      `json:"errmsg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Response writes the JSON envelope. A nil err is success.
func Response(c echo.Context, err error, data any) error {
	if err == nil {
		return c.JSON(http.StatusOK, BaseResponse{
			ErrCode: 0,
			ErrMsg:  "ok",
			Data:    data,
		})
	}
	return c.JSON(http.StatusOK, BaseResponse{
		ErrCode: 1,
		ErrMsg:  err.Error(),
	})
}
