package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/price-notify/internal/offer"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtractStructured_NestedSellerName(t *testing.T) {
	t.Parallel()

	offers := ExtractStructured(decodeJSON(t, `{"seller": {"name": "X"}, "price": "100 TL"}`), DefaultStructuredOptions())

	require.Len(t, offers, 1)
	assert.Equal(t, offer.Offer{Seller: "X", Price: "100 TL"}, offers[0])
}

func TestExtractStructured_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractStructured(nil, DefaultStructuredOptions()))
	assert.Empty(t, ExtractStructured(map[string]any{}, DefaultStructuredOptions()))
	assert.Empty(t, ExtractStructured([]any{}, DefaultStructuredOptions()))
	assert.Empty(t, ExtractStructured("100 TL", DefaultStructuredOptions()))
}

func TestExtractStructured_Aliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want offer.Offer
	}{
		{
			name: "숫자 가격은 정규 형식으로",
			raw:  `{"priceValue": 51299, "merchantName": "Teknosa", "channel": "Teknosa"}`,
			want: offer.Offer{Site: "Teknosa", Seller: "Teknosa", Price: "51.299,00 TL"},
		},
		{
			name: "대소문자 무시",
			raw:  `{"PRICE": "49.999,00 TL", "Store": "MediaMarkt"}`,
			want: offer.Offer{Seller: "MediaMarkt", Price: "49.999,00 TL"},
		},
		{
			name: "snake_case 키",
			raw:  `{"display_price": "100 TL", "seller_name": "A", "site_name": "B"}`,
			want: offer.Offer{Site: "B", Seller: "A", Price: "100 TL"},
		},
		{
			name: "터키어 별칭",
			raw:  `{"fiyat": "1.250,00 TL", "satici": "Yerel Satıcı"}`,
			want: offer.Offer{Seller: "Yerel Satıcı", Price: "1.250,00 TL"},
		},
		{
			name: "price 객체 내부",
			raw:  `{"price": {"currency": "TRY", "value": 48000}, "platform": {"displayName": "Amazon"}}`,
			want: offer.Offer{Site: "Amazon", Price: "48.000,00 TL"},
		},
		{
			name: "가격처럼 보이지 않는 값은 다음 별칭으로",
			raw:  `{"price": "yok", "amount": "75", "seller": "A"}`,
			want: offer.Offer{Seller: "A", Price: "75 TL"},
		},
		{
			name: "먼저 찾은 판매자 별칭 우선",
			raw:  `{"price": 10, "seller": {"name": "First"}, "merchant": "Second"}`,
			want: offer.Offer{Seller: "First", Price: "10,00 TL"},
		},
		{
			name: "빈 문자열 판매자는 다음 별칭으로",
			raw:  `{"price": 10, "seller": "  ", "store": " Next "}`,
			want: offer.Offer{Seller: "Next", Price: "10,00 TL"},
		},
		{
			name: "절대 URL만 허용",
			raw:  `{"price": 10, "seller": "A", "url": "/p/1", "deeplink": "https://shop/p/1"}`,
			want: offer.Offer{Seller: "A", Price: "10,00 TL", URL: "https://shop/p/1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offers := ExtractStructured(decodeJSON(t, tt.raw), DefaultStructuredOptions())
			require.Len(t, offers, 1)
			assert.Equal(t, tt.want, offers[0])
		})
	}
}

func TestExtractStructured_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"판매자와 사이트 모두 없음", `{"price": "100 TL", "name": "iPhone"}`},
		{"가격 없음", `{"seller": "A", "site": "B"}`},
		{"0원", `{"price": 0, "seller": "A"}`},
		{"숫자가 아닌 가격", `{"price": "Tükendi", "seller": "A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, ExtractStructured(decodeJSON(t, tt.raw), DefaultStructuredOptions()))
		})
	}
}

func TestExtractStructured_WalkAndDedup(t *testing.T) {
	t.Parallel()

	raw := `{
		"data": {
			"offers": [
				{"site": "Amazon", "seller": "Amazon", "price": "48.000,00 TL", "url": "https://a/1"},
				{"site": "Amazon", "seller": "Amazon", "price": "48.000,00 TL", "url": "https://a/2"},
				{"seller": "Solo", "price": "100 TL"},
				{"seller": "Solo", "price": "100 TL"},
				{"wrapper": [[{"market": "N11", "store": "Deep", "price": "55 TL"}]]}
			]
		}
	}`

	offers := ExtractStructured(decodeJSON(t, raw), DefaultStructuredOptions())

	want := []offer.Offer{
		{Site: "Amazon", Seller: "Amazon", Price: "48.000,00 TL", URL: "https://a/1"},
		{Seller: "Solo", Price: "100 TL"},
		{Seller: "Solo", Price: "100 TL"},
		{Site: "N11", Seller: "Deep", Price: "55 TL"},
	}
	assert.Equal(t, want, offers)
}

func TestExtractStructured_KeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	raw := `{
		"z": {"site": "Amazon", "seller": "Amazon", "price": "100 TL", "url": "https://first"},
		"a": {"site": "Amazon", "seller": "Amazon", "price": "100 TL", "url": "https://second"},
		"m": {"sellerName": "Yan", "SellerName": "Sonra", "price": {"Value": 5, "raw": "6 TL"}}
	}`

	root, ok := ParsePayload(raw, "")
	require.True(t, ok)

	want := []offer.Offer{
		{Site: "Amazon", Seller: "Amazon", Price: "100 TL", URL: "https://first"},
		{Seller: "Yan", Price: "6 TL"},
	}
	assert.Equal(t, want, ExtractStructured(root, DefaultStructuredOptions()))

	// Go 맵은 순서가 없으므로 키 정렬 순서를 따른다.
	assert.Equal(t, "https://second", ExtractStructured(decodeJSON(t, raw), DefaultStructuredOptions())[0].URL)
}

func TestExtractStructured_DeepNesting(t *testing.T) {
	t.Parallel()

	var node any = map[string]any{"price": "9 TL", "seller": "Bottom"}
	for range 100_000 {
		node = []any{map[string]any{"child": node}}
	}

	offers := ExtractStructured(node, DefaultStructuredOptions())
	require.Len(t, offers, 1)
	assert.Equal(t, "Bottom", offers[0].Seller)
}

func TestExtractStructured_NodeBudget(t *testing.T) {
	t.Parallel()

	items := make([]any, 0, 10)
	for range 10 {
		items = append(items, map[string]any{"price": "1 TL", "seller": "S"})
	}

	opts := DefaultStructuredOptions()
	opts.MaxNodes = 4 // 루트 시퀀스 + 매핑 3개

	offers := ExtractStructured(items, opts)
	assert.Len(t, offers, 3)
}

func TestKeyView(t *testing.T) {
	t.Parallel()

	view := newKeyView(map[string]any{"SellerName": "a", "offer-url": "b", "price": 1})

	v, ok := view.get("sellername")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = view.get("offerurl")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = view.get("seller")
	assert.False(t, ok)
}
