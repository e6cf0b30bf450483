package extract

import (
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
)

// keyView 매핑 노드의 키를 대소문자 구분 없이 조회할 수 있도록 노드마다 한 번 만들어 두는 색인입니다.
//
// 소문자 키로 먼저 찾고, 없으면 구분자(_, -, 공백)를 제거한 형태로 다시 찾습니다.
// 따라서 "sellerName", "SellerName", "seller_name"은 모두 별칭 "sellername"과 일치합니다.
type keyView struct {
	node    map[string]any
	lower   map[string]string
	compact map[string]string
}

// newKeyView Go 맵에는 순서가 없으므로 키를 정렬한 순서로 색인합니다.
func newKeyView(node map[string]any) keyView {
	return newOrderedKeyView(node, sortedKeys(node))
}

// newOrderedKeyView 소문자가 같은 키가 여러 개이면 keys 순서상 앞선 키를 사용합니다.
func newOrderedKeyView(node map[string]any, keys []string) keyView {
	v := keyView{
		node:    node,
		lower:   make(map[string]string, len(node)),
		compact: make(map[string]string, len(node)),
	}
	for _, k := range keys {
		lk := strings.ToLower(k)
		if _, exists := v.lower[lk]; !exists {
			v.lower[lk] = k
		}
		ck := compactKey(k)
		if _, exists := v.compact[ck]; !exists {
			v.compact[ck] = k
		}
	}
	return v
}

// asKeyView 매핑 노드(map[string]any 또는 *Object)이면 색인을 만들어 반환합니다.
func asKeyView(node any) (keyView, bool) {
	switch n := node.(type) {
	case map[string]any:
		return newKeyView(n), true
	case *Object:
		return n.keyView(), true
	}
	return keyView{}, false
}

func sortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// get 별칭과 일치하는 키의 값을 반환합니다. 별칭은 소문자로 주어집니다.
func (v keyView) get(alias string) (any, bool) {
	if k, ok := v.lower[alias]; ok {
		return v.node[k], true
	}
	if k, ok := v.compact[alias]; ok {
		return v.node[k], true
	}
	return nil, false
}

// compactKey "seller_name", "Seller-Name" 같은 키를 "sellername"으로 정규화합니다.
func compactKey(k string) string {
	return strings.ToLower(strcase.ToCamel(k))
}
