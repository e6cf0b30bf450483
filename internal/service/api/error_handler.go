package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// componentErrorHandler 에러 핸들러 로그의 컴포넌트 이름
const componentErrorHandler = "api.error_handler"

// ErrorHandler 모든 HTTP 에러를 ErrorResponse JSON으로 변환하는 전역 에러 핸들러입니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := errMsgInternalServer

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case ErrorResponse:
			message = m.Message
		}
	}

	if code == http.StatusNotFound {
		message = errMsgNotFound
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	switch {
	case code >= http.StatusInternalServerError:
		applog.WithComponentAndFields(componentErrorHandler, fields).Error("HTTP 5xx: 서버 내부 오류가 발생했습니다")
	case code >= http.StatusBadRequest:
		applog.WithComponentAndFields(componentErrorHandler, fields).Warn("HTTP 4xx: 클라이언트 요청 오류")
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
