package offer

import (
	"cmp"
	"slices"
)

// KeyFunc 중복 판별 키를 계산합니다. ok=false인 Offer는 중복 검사 대상에서 제외되어 항상 유지됩니다.
type KeyFunc func(Offer) (key string, ok bool)

// ByIdentity 링크 우선 식별 키로 판별합니다.
func ByIdentity(o Offer) (string, bool) { return o.IdentityKey() }

// ByTriple site|seller|price 조합으로 판별합니다.
func ByTriple(o Offer) (string, bool) { return o.TripleKey() }

// Dedup 같은 키를 가진 Offer 중 처음 나온 것만 남긴 새 슬라이스를 반환합니다.
// 입력은 변경하지 않으며, 두 번 적용해도 결과가 같습니다.
func Dedup(offers []Offer, key KeyFunc) []Offer {
	seen := make(map[string]struct{}, len(offers))
	result := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if k, ok := key(o); ok {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		result = append(result, o)
	}
	return result
}

// Rank 수치 가격 오름차순으로 안정 정렬한 새 슬라이스를 반환합니다.
// 가격을 해석할 수 없는 Offer(+Inf)는 버리지 않고 맨 뒤에 놓입니다.
func Rank(offers []Offer) []Offer {
	ranked := slices.Clone(offers)
	slices.SortStableFunc(ranked, func(a, b Offer) int {
		return cmp.Compare(a.Value(), b.Value())
	})
	return ranked
}

// Cheapest 가장 싼 Offer를 반환합니다. 정렬된 목록을 가정합니다.
func Cheapest(ranked []Offer) (Offer, bool) {
	if len(ranked) == 0 {
		return Offer{}, false
	}
	return ranked[0], true
}
