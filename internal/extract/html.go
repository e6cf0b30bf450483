package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/price-notify/internal/offer"
)

// Selectors 가격 비교 페이지에서 제안 카드를 구성하는 요소를 찾는 CSS 선택자입니다.
type Selectors struct {
	Anchor       string `json:"anchor"`         // 가격 목록이 들어 있는 영역
	Price        string `json:"price"`          // 가격 텍스트를 가진 노드
	Seller       string `json:"seller"`         // 판매자 이름 라벨
	SiteLogo     string `json:"site_logo"`      // alt 속성에 사이트 이름을 가진 로고 이미지
	CallToAction string `json:"call_to_action"` // 판매 페이지로 이동하는 버튼 문구
}

// DefaultBaseOrigin 루트 상대 링크의 기준 origin 기본값
const DefaultBaseOrigin = "https://www.cimri.com"

// HTMLOptions HTML 추출기의 동작을 설정합니다.
type HTMLOptions struct {
	Selectors  Selectors
	BaseOrigin string // 루트 상대 링크를 절대 URL로 바꿀 때 사용할 origin
	MaxAscend  int
}

// DefaultHTMLOptions cimri.com 상품 페이지 구조에 맞춘 기본값을 반환합니다.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Selectors: Selectors{
			Anchor:       "section#fiyatlar",
			Price:        "div.rTdMX",
			Seller:       "div.zp61l",
			SiteLogo:     `img[src*="merchant-logos"]`,
			CallToAction: "Mağazaya Git",
		},
		BaseOrigin: DefaultBaseOrigin,
		MaxAscend:  DefaultMaxAscend,
	}
}

// ExtractHTML 앵커 영역 안의 가격 노드마다 카드 경계를 추론하여 Offer 목록을 만듭니다.
//
// 앵커가 없으면 빈 목록을 반환합니다. 노드 단위의 추출 실패는 해당 노드만 건너뜁니다.
func ExtractHTML(doc *goquery.Document, opts HTMLOptions) []offer.Offer {
	if doc == nil {
		return nil
	}

	section := doc.Find(opts.Selectors.Anchor).First()
	if section.Length() == 0 {
		return nil
	}

	maxAscend := opts.MaxAscend
	if maxAscend <= 0 {
		maxAscend = DefaultMaxAscend
	}

	base, _ := url.Parse(opts.BaseOrigin)
	tree := selectionAncestry{marker: opts.Selectors.Price}

	var offers []offer.Offer
	seen := make(map[string]struct{})

	section.Find(opts.Selectors.Price).Each(func(_ int, priceNode *goquery.Selection) {
		o, ok := extractCard(tree, priceNode, opts.Selectors, base, maxAscend)
		if !ok {
			return
		}

		if key, ok := o.IdentityKey(); ok {
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
		}

		if o.IsValid() {
			offers = append(offers, o)
		}
	})

	return offers
}

// extractCard 가격 노드 하나에서 카드를 추론하고 필드를 채웁니다. 실패하면 ok=false입니다.
func extractCard(tree selectionAncestry, priceNode *goquery.Selection, sel Selectors, base *url.URL, maxAscend int) (o offer.Offer, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o, ok = offer.Offer{}, false
		}
	}()

	price, found := offer.NormalizeCurrencyText(nodeText(priceNode))
	if !found {
		return offer.Offer{}, false
	}

	card, _ := InferCard[*goquery.Selection](tree, priceNode, maxAscend)

	o = offer.Offer{Price: price}

	if sellerNode := card.Find(sel.Seller).First(); sellerNode.Length() > 0 {
		o.Seller = nodeText(sellerNode)
	}

	if logo := card.Find(sel.SiteLogo).First(); logo.Length() > 0 {
		o.Site = strings.TrimSpace(logo.AttrOr("alt", ""))
	}

	o.URL = findCallToActionLink(card, sel.CallToAction, base)

	return o, true
}

// findCallToActionLink 문구가 일치하는 첫 번째 a/button 요소의 href를 반환합니다.
// 루트 상대 경로는 base 기준의 절대 URL로 바꿉니다.
func findCallToActionLink(card *goquery.Selection, phrase string, base *url.URL) string {
	if phrase == "" {
		return ""
	}

	cta := card.Find("a, button").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return containsFold(nodeText(s), phrase)
	}).First()
	if cta.Length() == 0 {
		return ""
	}

	href := strings.TrimSpace(cta.AttrOr("href", ""))
	if !strings.HasPrefix(href, "/") || base == nil || base.Host == "" {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
