// Package offer 단일 상품 페이지에서 수집한 판매 제안(Offer)과 가격 정규화, 중복 제거, 정렬을 다룹니다.
package offer

import (
	"strings"
)

// Offer 한 판매자가 추적 중인 상품에 제시한 가격입니다.
//
// 생성 이후에는 값으로만 전달되며 변경하지 않습니다.
type Offer struct {
	Site   string `json:"site"`   // 마켓플레이스 이름 (예: Hepsiburada)
	Seller string `json:"seller"` // 판매자 이름
	Price  string `json:"price"`  // 정규화된 표시용 가격 (예: "51.299,00 TL")
	URL    string `json:"url"`    // 판매 페이지로 가는 절대 URL
}

// IsValid 가격이 있고 사이트나 판매자 중 하나 이상이 확인된 경우에만 true를 반환합니다.
func (o Offer) IsValid() bool {
	return o.Price != "" && (o.Site != "" || o.Seller != "")
}

// Value 정렬과 임계값 비교에 사용할 수치 가격을 반환합니다.
// 해석할 수 없는 가격은 +Inf입니다.
func (o Offer) Value() float64 {
	return Value(o.Price)
}

// IdentityKey 중복 판별 키를 반환합니다.
// 링크가 있으면 링크를, 없으면 site|seller|price 조합을 사용하며,
// 조합의 구성 요소 중 하나라도 비어 있으면 ok=false입니다.
func (o Offer) IdentityKey() (key string, ok bool) {
	if u := normalizeURL(o.URL); u != "" {
		return u, true
	}
	return o.TripleKey()
}

// TripleKey site|seller|price 조합 키를 반환합니다. 세 값이 모두 있어야 ok=true입니다.
func (o Offer) TripleKey() (key string, ok bool) {
	if o.Site == "" || o.Seller == "" || o.Price == "" {
		return "", false
	}
	return o.Site + "|" + o.Seller + "|" + o.Price, true
}

func normalizeURL(u string) string {
	return strings.TrimSpace(u)
}
