package policy

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/darkkaiser/price-notify/internal/offer"
)

// IdentitySet 대소문자를 구분하지 않는 판매처 이름 집합입니다. (예: hepsiburada, amazon)
type IdentitySet struct {
	members map[string]struct{}
}

// NewIdentitySet 이름 목록으로 집합을 만듭니다. 앞뒤 공백을 제거하며 빈 이름은 무시합니다.
func NewIdentitySet(names ...string) IdentitySet {
	s := IdentitySet{members: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if key := fold(name); key != "" {
			s.members[key] = struct{}{}
		}
	}
	return s
}

// Len 집합의 원소 수를 반환합니다.
func (s IdentitySet) Len() int {
	return len(s.members)
}

// member 이름이 집합에 속하면 정규화된 원소를 반환합니다.
func (s IdentitySet) member(name string) (string, bool) {
	key := fold(name)
	if key == "" {
		return "", false
	}
	_, ok := s.members[key]
	return key, ok
}

// Contains 이름이 집합에 속하는지 검사합니다.
func (s IdentitySet) Contains(name string) bool {
	_, ok := s.member(name)
	return ok
}

// StrictMatch 사이트와 판매자가 모두 집합의 같은 원소와 일치할 때만 true입니다.
// 예: Hepsiburada/Hepsiburada는 일치하지만 Hepsiburada/Amazon이나 Hepsiburada/SomeOtherSeller는 일치하지 않습니다.
func (s IdentitySet) StrictMatch(o offer.Offer) bool {
	site, ok := s.member(o.Site)
	if !ok {
		return false
	}
	seller, ok := s.member(o.Seller)
	return ok && site == seller
}

// HighlightMatch 사이트나 판매자 중 하나라도 집합에 속하면 true입니다.
func (s IdentitySet) HighlightMatch(o offer.Offer) bool {
	return s.Contains(o.Site) || s.Contains(o.Seller)
}

// fold 비교용으로 이름을 정규화합니다. Caser는 상태를 가지므로 호출마다 새로 만든다.
func fold(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
