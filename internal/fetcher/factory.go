package fetcher

import (
	"time"
)

// Config Fetcher 체인 구성 설정입니다.
type Config struct {
	Timeout       time.Duration
	MaxRetries    int
	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration
	MaxBytes      int64
	Headers       map[string]string
}

// New HTTPFetcher에 재시도와 본문 크기 제한을 차례로 씌운 Fetcher를 반환합니다.
func New(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.Timeout, cfg.Headers)
	if cfg.MaxRetries > 0 {
		f = NewRetryFetcher(f, cfg.MaxRetries, cfg.MinRetryDelay, cfg.MaxRetryDelay)
	}
	return NewMaxBytesFetcher(f, cfg.MaxBytes)
}
