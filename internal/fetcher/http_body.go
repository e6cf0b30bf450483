package fetcher

import (
	"io"
)

const maxDrainBytes = 64 * 1024

// drainAndCloseBody 커넥션 재사용을 위해 남은 본문을 일부 읽어 버린 뒤 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
}
