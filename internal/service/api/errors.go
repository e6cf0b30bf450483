package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	errMsgBadRequest     = "잘못된 요청입니다."
	errMsgNotFound       = "페이지를 찾을 수 없습니다."
	errMsgInternalServer = "내부 서버 오류가 발생했습니다."
	errMsgEmptyPreview   = "html 또는 data 중 하나는 필수입니다."
)

// ErrorResponse 모든 에러 응답의 본문 형식입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// newBadRequestError 400 Bad Request 에러를 생성합니다.
func newBadRequestError(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		ResultCode: http.StatusBadRequest,
		Message:    message,
	})
}
