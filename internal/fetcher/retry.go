package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

const (
	minAllowedRetries = 0
	maxAllowedRetries = 10

	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 일시적인 실패(네트워크 오류, 408, 429, 5xx)를 지수 백오프와 Full Jitter로 재시도합니다.
// 서버가 Retry-After를 주면 그 값을 따르되, maxRetryDelay를 넘으면 재시도하지 않습니다.
// POST, PATCH 요청은 재시도하지 않습니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	minRetryDelay, maxRetryDelay = normalizeRetryDelays(minRetryDelay, maxRetryDelay)

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    normalizeMaxRetries(maxRetries),
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}
	if req.Body != nil && req.GetBody == nil {
		effectiveMaxRetries = 0
	}

	var lastErr error
	var lastResp *http.Response

	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			delay, err := f.delayFor(i, lastResp)
			if err != nil {
				if lastResp != nil {
					drainAndCloseBody(lastResp.Body)
				}
				return nil, err
			}

			fields := applog.Fields{
				"url":         req.URL.Redacted(),
				"retry":       i,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
			}
			if lastErr != nil {
				fields["error"] = lastErr.Error()
			}
			if lastResp != nil {
				fields["status_code"] = lastResp.StatusCode
				drainAndCloseBody(lastResp.Body)
				lastResp = nil
			}
			applog.WithComponentAndFields(component, fields).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err != nil {
			if resp != nil {
				drainAndCloseBody(resp.Body)
			}
			if req.Context().Err() != nil || !isRetriable(err) {
				return nil, err
			}

			lastErr, lastResp = err, nil
			continue
		}

		if !isRetriableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastErr, lastResp = nil, resp
	}

	if lastResp != nil {
		statusErr := CheckResponseStatus(lastResp)
		drainAndCloseBody(lastResp.Body)
		return nil, newErrMaxRetriesExceeded(statusErr)
	}
	return nil, newErrMaxRetriesExceeded(lastErr)
}

// delayFor i번째 재시도 전 대기 시간을 계산합니다.
func (f *RetryFetcher) delayFor(i int, lastResp *http.Response) (time.Duration, error) {
	if lastResp != nil {
		if v := lastResp.Header.Get("Retry-After"); v != "" {
			if d, ok := parseRetryAfter(v); ok {
				if d > f.maxRetryDelay {
					return 0, newErrRetryAfterExceeded(d.String(), f.maxRetryDelay.String())
				}
				return d, nil
			}
		}
	}

	delay := f.minRetryDelay * time.Duration(1<<(i-1))
	if delay > f.maxRetryDelay || delay <= 0 {
		delay = f.maxRetryDelay
	}
	delay = time.Duration(rand.Int64N(int64(delay) + 1))
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}
	return delay, nil
}

func normalizeMaxRetries(maxRetries int) int {
	return min(max(maxRetries, minAllowedRetries), maxAllowedRetries)
}

func normalizeRetryDelays(minRetryDelay, maxRetryDelay time.Duration) (time.Duration, time.Duration) {
	if minRetryDelay < time.Second {
		minRetryDelay = time.Second
	}
	if maxRetryDelay == 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}
	return minRetryDelay, maxRetryDelay
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace, "":
		return true
	}
	return false
}

func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	}
	return code >= 500
}

func isRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if strings.Contains(urlErr.Error(), "unsupported protocol scheme") ||
			strings.Contains(urlErr.Error(), "stopped after 10 redirects") {
			return false
		}
	}

	var x509HostnameErr x509.HostnameError
	var x509UnknownAuthorityErr x509.UnknownAuthorityError
	var x509CertificateInvalidErr x509.CertificateInvalidError
	if errors.As(err, &x509HostnameErr) || errors.As(err, &x509UnknownAuthorityErr) || errors.As(err, &x509CertificateInvalidErr) {
		return false
	}

	if apperrors.Is(err, apperrors.InvalidInput) || apperrors.Is(err, apperrors.NotFound) || apperrors.Is(err, apperrors.ExecutionFailed) {
		return false
	}

	return true
}

// parseRetryAfter 초 단위 정수 또는 HTTP-date 형식을 해석합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if date, err := http.ParseTime(value); err == nil {
		return max(time.Until(date), 0), true
	}

	return 0, false
}
