package extract

import (
	"strings"

	"github.com/darkkaiser/price-notify/internal/offer"
)

// DefaultMaxWalkNodes 구조화 데이터 순회 시 방문할 수 있는 최대 노드 수입니다.
const DefaultMaxWalkNodes = 500_000

// Aliases 구조화 데이터에서 각 필드를 찾을 때 순서대로 시도하는 키 목록입니다. 모두 소문자입니다.
type Aliases struct {
	Price       []string `json:"price"`
	PriceNested []string `json:"price_nested"` // price 객체 안에서 찾을 키
	Seller      []string `json:"seller"`
	SellerName  []string `json:"seller_name"` // seller 객체 안에서 이름을 찾을 키
	Site        []string `json:"site"`
	SiteName    []string `json:"site_name"` // site 객체 안에서 이름을 찾을 키
	URL         []string `json:"url"`
}

// DefaultAliases 기본 별칭 목록을 반환합니다. fiyat, satici, magaza는 터키어 별칭입니다.
func DefaultAliases() Aliases {
	return Aliases{
		Price:       []string{"price", "pricenew", "pricevalue", "displayprice", "pricetext", "fiyat", "amount"},
		PriceNested: []string{"raw", "value", "text", "amount"},
		Seller:      []string{"seller", "sellername", "merchant", "merchantname", "store", "storename", "satici", "magaza"},
		SellerName:  []string{"name", "displayname", "merchantname", "sellername", "storename"},
		Site:        []string{"market", "marketname", "platform", "platformname", "site", "sitename", "channel", "channelname"},
		SiteName:    []string{"name", "displayname", "marketname", "platformname"},
		URL:         []string{"url", "deeplink", "link", "producturl", "offerurl"},
	}
}

// StructuredOptions 구조화 데이터 추출기의 동작을 설정합니다.
type StructuredOptions struct {
	Aliases  Aliases
	MaxNodes int
}

// DefaultStructuredOptions 기본 별칭과 순회 한도를 반환합니다.
func DefaultStructuredOptions() StructuredOptions {
	return StructuredOptions{
		Aliases:  DefaultAliases(),
		MaxNodes: DefaultMaxWalkNodes,
	}
}

// ExtractStructured 임의의 중첩 데이터(*Object, map[string]any, []any, 스칼라)를 깊이 우선으로
// 순회하며 Offer 형태를 갖춘 매핑 노드를 찾습니다.
//
// 재귀 대신 명시적 스택을 사용하고 방문 노드 수를 MaxNodes로 제한합니다. *Object의 자식은 문서 순서로,
// map[string]any의 자식은 키 정렬 순서로 방문합니다. 결과는 site|seller|price 조합으로 중복을
// 제거하며, 조합을 만들 수 없는 Offer는 유지합니다.
func ExtractStructured(root any, opts StructuredOptions) []offer.Offer {
	if root == nil {
		return nil
	}

	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxWalkNodes
	}

	var candidates []offer.Offer

	stack := []any{root}
	for visited := 0; len(stack) > 0 && visited < maxNodes; visited++ {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case *Object:
			if o, ok := probeOffer(n.keyView(), opts.Aliases); ok {
				candidates = append(candidates, o)
			}
			stack = pushChildren(stack, n.Values, n.Keys)

		case map[string]any:
			if o, ok := probeOffer(newKeyView(n), opts.Aliases); ok {
				candidates = append(candidates, o)
			}
			stack = pushChildren(stack, n, sortedKeys(n))

		case []any:
			for i := len(n) - 1; i >= 0; i-- {
				if isContainer(n[i]) {
					stack = append(stack, n[i])
				}
			}
		}
	}

	return offer.Dedup(candidates, offer.ByTriple)
}

// pushChildren keys 순서대로 꺼내지도록 컨테이너 자식을 역순으로 쌓습니다.
func pushChildren(stack []any, values map[string]any, keys []string) []any {
	for i := len(keys) - 1; i >= 0; i-- {
		if child := values[keys[i]]; isContainer(child) {
			stack = append(stack, child)
		}
	}
	return stack
}

func isContainer(v any) bool {
	switch v.(type) {
	case *Object, map[string]any, []any:
		return true
	}
	return false
}

// probeOffer 하나의 매핑 노드에서 가격, 판매자, 사이트, 링크를 찾습니다.
// 가격이 있고 판매자나 사이트 중 하나 이상이 있을 때만 ok=true입니다.
func probeOffer(view keyView, aliases Aliases) (offer.Offer, bool) {
	price, ok := probePrice(view, aliases)
	if !ok {
		return offer.Offer{}, false
	}

	o := offer.Offer{
		Price:  price,
		Seller: probeName(view, aliases.Seller, aliases.SellerName),
		Site:   probeName(view, aliases.Site, aliases.SiteName),
	}
	if !o.IsValid() {
		return offer.Offer{}, false
	}

	o.URL = probeURL(view, aliases.URL)
	return o, true
}

func probePrice(view keyView, aliases Aliases) (string, bool) {
	for _, alias := range aliases.Price {
		if v, ok := view.get(alias); ok && offer.LooksLikePrice(v) {
			if price, ok := offer.Normalize(v); ok {
				return price, true
			}
		}
	}

	// {"price": {"value": 100}} 형태
	if v, ok := view.get("price"); ok {
		if nestedView, ok := asKeyView(v); ok {
			for _, alias := range aliases.PriceNested {
				if nv, ok := nestedView.get(alias); ok && offer.LooksLikePrice(nv) {
					if price, ok := offer.Normalize(nv); ok {
						return price, true
					}
				}
			}
		}
	}

	return "", false
}

// probeName 별칭 순서대로 문자열 값을 찾고, 값이 객체이면 한 단계 내려가 이름 필드를 찾습니다.
// 처음으로 찾은 비어 있지 않은 이름을 반환합니다.
func probeName(view keyView, aliases, nameAliases []string) string {
	for _, alias := range aliases {
		v, ok := view.get(alias)
		if !ok {
			continue
		}

		if val, ok := v.(string); ok {
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
			continue
		}

		if nested, ok := asKeyView(v); ok {
			for _, nameAlias := range nameAliases {
				if nv, ok := nested.get(nameAlias); ok {
					if s, ok := nv.(string); ok && strings.TrimSpace(s) != "" {
						return strings.TrimSpace(s)
					}
				}
			}
		}
	}
	return ""
}

func probeURL(view keyView, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := view.get(alias); ok {
			if s, ok := v.(string); ok && isAbsoluteHTTP(s) {
				return s
			}
		}
	}
	return ""
}

func isAbsoluteHTTP(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
