package extract

import "github.com/PuerkitoBio/goquery"

// DefaultMaxAscend 카드 경계를 찾기 위해 가격 노드에서 올라갈 수 있는 최대 조상 단계 수입니다.
const DefaultMaxAscend = 12

// Ancestry 카드 경계 추론에 필요한 트리 연산입니다.
type Ancestry[N any] interface {
	// Parent n의 부모 노드를 반환합니다. 루트이면 ok=false입니다.
	Parent(n N) (parent N, ok bool)

	// MarkedCount n의 하위에 있는 가격 노드 수를 반환합니다.
	MarkedCount(n N) int
}

// InferCard 가격 노드 start에서 부모 방향으로 올라가며, 가격 노드를 정확히 하나만 포함하는
// 가장 높은 조상을 카드 경계로 선택합니다.
//
// 부모가 둘 이상의 가격 노드를 포함하는 순간 멈추며, maxDepth 단계를 넘어서 올라가지 않습니다.
// 바로 위 부모부터 조건을 만족하지 않으면 start 자신이 카드가 됩니다.
func InferCard[N any](tree Ancestry[N], start N, maxDepth int) (card N, depth int) {
	card = start
	cur := start
	for depth < maxDepth {
		parent, ok := tree.Parent(cur)
		if !ok || tree.MarkedCount(parent) != 1 {
			break
		}
		card, cur = parent, parent
		depth++
	}
	return card, depth
}

// selectionAncestry goquery Selection 위에서 Ancestry를 구현합니다.
type selectionAncestry struct {
	marker string
}

func (a selectionAncestry) Parent(s *goquery.Selection) (*goquery.Selection, bool) {
	p := s.Parent()
	return p, p.Length() > 0
}

func (a selectionAncestry) MarkedCount(s *goquery.Selection) int {
	return s.Find(a.marker).Length()
}
