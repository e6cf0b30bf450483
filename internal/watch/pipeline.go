// Package watch 페이지 한 번의 확인(가져오기, 추출, 정렬, 판정, 렌더링, 전송)을 묶어 실행합니다.
package watch

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/price-notify/internal/extract"
	"github.com/darkkaiser/price-notify/internal/notify/telegram"
	"github.com/darkkaiser/price-notify/internal/offer"
	"github.com/darkkaiser/price-notify/internal/policy"
)

// Pipeline 입출력이 없는 처리 단계의 설정입니다. 같은 입력에 대해 항상 같은 Result를 반환합니다.
type Pipeline struct {
	Extract    extract.Options
	Thresholds policy.Thresholds

	// Identities 조건 B(StrictMatch)와 강조 표시(HighlightMatch)에 함께 사용합니다.
	Identities policy.IdentitySet

	Render telegram.RenderOptions
}

// Result 처리 결과
type Result struct {
	Offers   []offer.Offer   `json:"offers"`
	Source   extract.Source  `json:"source"`
	Decision policy.Decision `json:"decision"`
	Blocks   []string        `json:"blocks"`
}

// FromDocument HTML 문서에서 Offer를 추출하여 처리합니다.
func (p Pipeline) FromDocument(doc *goquery.Document) Result {
	offers, source := extract.Extract(doc, p.Extract)
	return p.finish(offers, source)
}

// FromData 이미 파싱된 JSON 트리에서 Offer를 추출하여 처리합니다.
func (p Pipeline) FromData(root any) Result {
	offers := extract.ExtractStructured(root, p.Extract.Structured)

	source := extract.SourceNone
	if len(offers) > 0 {
		source = extract.SourceStructured
	}
	return p.finish(offers, source)
}

func (p Pipeline) finish(offers []offer.Offer, source extract.Source) Result {
	ranked := offer.Rank(offers)

	return Result{
		Offers:   ranked,
		Source:   source,
		Decision: policy.Evaluate(ranked, p.Thresholds, p.Identities),
		Blocks:   telegram.Render(ranked, p.Identities, p.Render),
	}
}
