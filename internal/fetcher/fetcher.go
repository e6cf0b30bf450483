// Package fetcher 상품 페이지를 가져와 goquery 문서로 파싱하는 HTTP 계층입니다.
//
// Fetcher는 데코레이터 방식으로 조합됩니다.
//
//	MaxBytesFetcher -> RetryFetcher -> HTTPFetcher
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	"golang.org/x/net/html/charset"
)

// component 로깅용 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송합니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("요청 URL(%s)이 올바르지 않습니다", url))
	}
	return f.Do(req)
}

// FetchDocument URL의 HTML 문서를 가져와 goquery.Document로 파싱합니다.
// Content-Type과 문서 내 meta 태그를 보고 비 UTF-8 페이지(windows-1254 등)도 UTF-8로 변환합니다.
func FetchDocument(ctx context.Context, f Fetcher, url string) (*goquery.Document, error) {
	resp, err := Get(ctx, f, url)
	if err != nil {
		if apperrors.UnderlyingType(err) != apperrors.Unknown {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("HTML 페이지(%s) 요청 중 네트워크 또는 클라이언트 에러가 발생했습니다", url))
	}
	defer resp.Body.Close()

	if err := CheckResponseStatus(resp); err != nil {
		return nil, err
	}

	return ReadDocument(resp.Body, resp.Header.Get("Content-Type"))
}

// ReadDocument r을 contentType에 맞게 UTF-8로 변환하여 파싱합니다. contentType은 비어 있어도 됩니다.
func ReadDocument(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "페이지의 인코딩 변환이 실패하였습니다")
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "불러온 페이지의 HTML 파싱이 실패하였습니다")
	}

	return doc, nil
}
