package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
)

const bodySnippetLimit = 4096

var (
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과하였습니다")
)

// HTTPStatusError HTTP 요청 실패 시 상태 코드와 응답 정보를 담는 에러입니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string

	Cause error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}

// CheckResponseStatus 200 OK가 아니면 상태 코드에 맞는 에러 타입으로 감싼 HTTPStatusError를 반환합니다.
//
//   - 404: NotFound
//   - 429, 5xx: Unavailable
//   - 그 외: ExecutionFailed
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	errType := apperrors.ExecutionFailed
	switch {
	case resp.StatusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		errType = apperrors.Unavailable
	}

	var snippet string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLimit))
		snippet = strings.TrimSpace(string(b))
	}

	var rawURL string
	if resp.Request != nil && resp.Request.URL != nil {
		rawURL = resp.Request.URL.Redacted()
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         rawURL,
		Header:      resp.Header.Clone(),
		BodySnippet: snippet,
		Cause:       apperrors.Newf(errType, "HTTP 요청이 실패했습니다. 상태 코드: %s", resp.Status),
	}
}

func newErrRetryAfterExceeded(retryAfter, maxDelay string) error {
	return apperrors.Newf(apperrors.Unavailable, "서버가 요구한 대기 시간(%s)이 최대 재시도 대기 시간(%s)을 초과하여 재시도를 중단합니다", retryAfter, maxDelay)
}

func newErrMaxRetriesExceeded(err error) error {
	if err == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(err, apperrors.Unavailable, ErrMaxRetriesExceeded.Error())
}

func newErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Newf(apperrors.ExecutionFailed, "응답 본문 크기가 허용된 최대 크기(%d bytes)를 초과하였습니다", limit)
}
