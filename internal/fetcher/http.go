package fetcher

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// DefaultHeaders 일반 브라우저처럼 보이도록 모든 요청에 붙이는 헤더입니다. 요청에 이미 있는 값은 덮어쓰지 않습니다.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
	"Referer":         "https://www.google.com/",
	"Cache-Control":   "no-cache",
}

// HTTPFetcher 기본 헤더를 붙여 http.Client로 요청을 보냅니다.
type HTTPFetcher struct {
	client  *http.Client
	headers map[string]string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher timeout이 0 이하이면 DefaultTimeout을 사용합니다. headers가 nil이면 DefaultHeaders를 사용합니다.
func NewHTTPFetcher(timeout time.Duration, headers map[string]string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if headers == nil {
		headers = DefaultHeaders
	}

	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		headers: headers,
	}
}

func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	var missing bool
	for k := range h.headers {
		if req.Header.Get(k) == "" {
			missing = true
			break
		}
	}

	if missing {
		req = req.Clone(req.Context())
		for k, v := range h.headers {
			if req.Header.Get(k) == "" {
				req.Header.Set(k, v)
			}
		}
	}

	return h.client.Do(req)
}
