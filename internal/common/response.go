package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    SuccessCode,
		Message: errorMsg[SuccessCode],
		Data:    data,
	})
}

// Error writes the coded envelope; auth and malformed-request failures
// additionally surface through the HTTP status so generic clients can
// react without parsing the body.
func Error(c *gin.Context, err error) {
	e := ConvertErr(err)
	c.JSON(httpStatus(e.ErrCode), Response{
		Code:    e.ErrCode,
		Message: e.ErrMsg,
		Data:    nil,
	})
}

func httpStatus(errCode int) int {
	switch errCode {
	case TokenInvalid:
		return http.StatusUnauthorized
	case RequestInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}
