// Package extract 가격 비교 페이지에서 판매 제안(Offer)을 복원합니다.
//
// 두 가지 추출기를 제공합니다.
//   - HTML 추출기: 고정된 가격 노드에서 조상 방향으로 올라가며 제안 카드의 경계를 추론합니다.
//   - 구조화 데이터 추출기: 페이지에 포함된 JSON 트리를 순회하며 별칭 키로 같은 형태를 찾습니다.
//
// 모든 추출 함수는 입출력을 수행하지 않으며, 실패한 노드는 건너뛰고 에러를 반환하지 않습니다.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/price-notify/internal/offer"
)

// Source Offer를 어떤 추출기로 얻었는지 나타냅니다.
type Source string

const (
	SourceNone       Source = "none"
	SourceHTML       Source = "html"
	SourceStructured Source = "structured"
)

// Options 문서 단위 추출 설정입니다.
type Options struct {
	HTML       HTMLOptions
	Structured StructuredOptions
	Payload    PayloadOptions

	// DisableFallback true이면 HTML 추출 결과가 비어도 구조화 데이터를 시도하지 않습니다.
	DisableFallback bool
}

// DefaultOptions 기본 추출 설정을 반환합니다.
func DefaultOptions() Options {
	return Options{
		HTML:       DefaultHTMLOptions(),
		Structured: DefaultStructuredOptions(),
		Payload:    DefaultPayloadOptions(),
	}
}

// Extract 먼저 HTML 추출기를 적용하고, 결과가 없으면 문서에 포함된 JSON 페이로드 전체에
// 구조화 데이터 추출기를 적용합니다.
func Extract(doc *goquery.Document, opts Options) ([]offer.Offer, Source) {
	if offers := ExtractHTML(doc, opts.HTML); len(offers) > 0 {
		return offers, SourceHTML
	}
	if opts.DisableFallback {
		return nil, SourceNone
	}

	payloads := EmbeddedPayloads(doc, opts.Payload)
	if len(payloads) == 0 {
		return nil, SourceNone
	}

	// 여러 페이로드를 하나의 시퀀스로 묶어 전체에서 중복을 제거한다.
	if offers := ExtractStructured(payloads, opts.Structured); len(offers) > 0 {
		return offers, SourceStructured
	}
	return nil, SourceNone
}
