package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/darkkaiser/price-notify/internal/offer"
	"github.com/darkkaiser/price-notify/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// RenderLine
// =============================================================================

func TestRenderLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		position  int
		offer     offer.Offer
		highlight bool
		expected  string
	}{
		{
			name:     "일반 항목 (HTML 특수문자 이스케이프)",
			position: 1,
			offer:    offer.Offer{Site: "Trendyol", Seller: "A&B <Store>", Price: "48.000,00 TL", URL: "https://x.example/?a=1&b=2"},
			expected: "1️⃣ Site: Trendyol | Satıcı: A&amp;B &lt;Store&gt; \n💲 Fiyat: 48.000,00 TL | Link: https://x.example/?a=1&amp;b=2",
		},
		{
			name:      "강조 항목, 판매자와 링크 없음",
			position:  2,
			offer:     offer.Offer{Site: "Hepsiburada", Price: "50.000,00 TL"},
			highlight: true,
			expected:  "<b>2️⃣ ⭐ Site: Hepsiburada | Satıcı: - \n💲 Fiyat: 50.000,00 TL</b>",
		},
		{
			name:     "10번째 항목",
			position: 10,
			offer:    offer.Offer{Seller: "Mağaza", Price: "1,00 TL"},
			expected: "🔟 Site: - | Satıcı: Mağaza \n💲 Fiyat: 1,00 TL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, RenderLine(tt.position, tt.offer, tt.highlight))
		})
	}
}

// =============================================================================
// Render
// =============================================================================

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Render(nil, policy.NewIdentitySet("amazon"), RenderOptions{Header: "H"}))
}

func TestRender_SingleBlock(t *testing.T) {
	t.Parallel()

	ranked := []offer.Offer{
		{Site: "Amazon", Seller: "Amazon", Price: "48.000,00 TL"},
		{Site: "Trendyol", Seller: "X", Price: "49.000,00 TL"},
	}
	highlight := policy.NewIdentitySet("hepsiburada", "amazon")

	blocks := Render(ranked, highlight, RenderOptions{Header: "H", Budget: 3800, SourceURL: "https://www.cimri.com/x"})

	require.Len(t, blocks, 1)
	expected := "H\n" +
		RenderLine(1, ranked[0], true) + "\n" +
		RenderLine(2, ranked[1], false) +
		"\n\n🔗 Kaynak: https://www.cimri.com/x"
	assert.Equal(t, expected, blocks[0])
	assert.True(t, strings.HasPrefix(blocks[0], "H\n<b>"))
}

func TestRender_SplitsIntoBudgetedBlocks(t *testing.T) {
	t.Parallel()

	var ranked []offer.Offer
	for i := 0; i < 40; i++ {
		ranked = append(ranked, offer.Offer{Site: "Site", Seller: strings.Repeat("s", i), Price: "1.000,00 TL", URL: "https://e.example/p"})
	}

	const header = DefaultHeader
	const budget = 400
	blocks := Render(ranked, policy.NewIdentitySet("amazon"), RenderOptions{Header: header, Budget: budget, SourceURL: "https://www.cimri.com/x"})

	require.Greater(t, len(blocks), 1)
	var joined []string
	for i, b := range blocks {
		assert.LessOrEqual(t, utf8.RuneCountInString(b), budget, "블록 %d", i)
		assert.True(t, strings.HasPrefix(b, header+"\n"), "블록 %d", i)
		hasSource := strings.Contains(b, "Kaynak:")
		assert.Equal(t, i == len(blocks)-1, hasSource, "출처는 마지막 블록에만 있어야 합니다 (블록 %d)", i)

		body, _, _ := strings.Cut(b, "\n\n🔗")
		body = strings.TrimPrefix(strings.TrimPrefix(body, header), "\n")
		if body != "" {
			joined = append(joined, body)
		}
	}

	// 블록을 이어 붙이면 모든 항목이 순서대로 나와야 한다.
	var expected []string
	for i, o := range ranked {
		expected = append(expected, RenderLine(i+1, o, false))
	}
	assert.Equal(t, strings.Join(expected, "\n"), strings.Join(joined, "\n"))
}

func TestRender_SourceMovesToNewBlockWhenFull(t *testing.T) {
	t.Parallel()

	ranked := []offer.Offer{{Site: "S", Price: "1,00 TL"}}
	line := RenderLine(1, ranked[0], false)
	budget := utf8.RuneCountInString("H\n" + line)

	blocks := Render(ranked, policy.IdentitySet{}, RenderOptions{Header: "H", Budget: budget, SourceURL: "https://c.example"})

	require.Len(t, blocks, 2)
	assert.Equal(t, "H\n"+line, blocks[0])
	assert.Equal(t, "H\n\n🔗 Kaynak: https://c.example", blocks[1])
}

func TestRender_OversizeLineIsSplit(t *testing.T) {
	t.Parallel()

	ranked := []offer.Offer{{Site: strings.Repeat("가", 100), Price: "1,00 TL"}}
	const budget = 30

	blocks := Render(ranked, policy.IdentitySet{}, RenderOptions{Header: "H", Budget: budget})

	require.Greater(t, len(blocks), 1)
	var sb strings.Builder
	for _, b := range blocks {
		assert.LessOrEqual(t, utf8.RuneCountInString(b), budget)
		assert.True(t, utf8.ValidString(b))
		require.True(t, strings.HasPrefix(b, "H\n"))
		sb.WriteString(strings.TrimPrefix(b, "H\n"))
	}
	assert.Equal(t, RenderLine(1, ranked[0], false), sb.String())
}

func TestRender_TrailerLongerThanBlockIsSplit(t *testing.T) {
	t.Parallel()

	const source = "https://www.cimri.com/cep-telefonlari/en-ucuz-apple-iphone-15-5g-128gb-siyah-fiyatlari,2237451716"
	const budget = 100

	ranked := []offer.Offer{{Site: "Amazon", Seller: "Amazon", Price: "48.000,00 TL", URL: "https://www.amazon.com.tr/dp/B0CHX1W1XY"}}
	blocks := Render(ranked, policy.NewIdentitySet("amazon"), RenderOptions{Header: DefaultHeader, Budget: budget, SourceURL: source})

	require.Greater(t, len(blocks), 2)
	var sb strings.Builder
	for i, b := range blocks {
		assert.LessOrEqual(t, utf8.RuneCountInString(b), budget, "블록 %d", i)
		require.True(t, strings.HasPrefix(b, DefaultHeader+"\n"), "블록 %d", i)
		assertBalancedHTML(t, strings.TrimPrefix(b, DefaultHeader))
		sb.WriteString(stripBold(strings.TrimPrefix(b, DefaultHeader+"\n")))
	}

	assert.Equal(t, stripBold(RenderLine(1, ranked[0], true))+"🔗 Kaynak: "+source, sb.String())
	assert.True(t, strings.HasSuffix(blocks[len(blocks)-1], "2237451716"))
}

func TestRender_OversizeHighlightedLineKeepsHTML(t *testing.T) {
	t.Parallel()

	ranked := []offer.Offer{{Site: "Amazon", Seller: strings.Repeat("A&B <Mağaza> ", 8), Price: "1,00 TL"}}
	const budget = 40

	blocks := Render(ranked, policy.NewIdentitySet("amazon"), RenderOptions{Header: "H", Budget: budget})

	require.Greater(t, len(blocks), 2)
	var sb strings.Builder
	for i, b := range blocks {
		assert.LessOrEqual(t, utf8.RuneCountInString(b), budget, "블록 %d", i)
		require.True(t, strings.HasPrefix(b, "H\n"), "블록 %d", i)

		body := strings.TrimPrefix(b, "H\n")
		assert.True(t, strings.HasPrefix(body, "<b>") && strings.HasSuffix(body, "</b>"), "블록 %d: %q", i, body)
		assertBalancedHTML(t, body)
		sb.WriteString(stripBold(body))
	}
	assert.Equal(t, stripBold(RenderLine(1, ranked[0], true)), sb.String())
}

func TestSplitHTMLText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		s        string
		n        int
		wantHead string
		wantTail string
	}{
		{"여유 있음", "abc", 5, "abc", ""},
		{"rune 경계", "가나다라", 2, "가나", "다라"},
		{"엔티티 앞에서 자름", "ab&amp;cd", 4, "ab", "&amp;cd"},
		{"엔티티 전체 포함", "ab&amp;cd", 7, "ab&amp;", "cd"},
		{"첫 단위가 엔티티", "&lt;x", 3, "", "&lt;x"},
		{"세미콜론 없는 &", "a&b", 2, "a&", "b"},
		{"0개", "abc", 0, "", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			head, tail := splitHTMLText(tt.s, tt.n)
			assert.Equal(t, tt.wantHead, head)
			assert.Equal(t, tt.wantTail, tail)
		})
	}
}

// assertBalancedHTML <b> 태그 짝이 맞고 잘린 엔티티가 없는지 검사합니다.
func assertBalancedHTML(t *testing.T, s string) {
	t.Helper()

	assert.Equal(t, strings.Count(s, "<b>"), strings.Count(s, "</b>"), "%q", s)
	for i := strings.IndexByte(s, '&'); i >= 0; {
		rest := s[i:]
		assert.True(t, strings.HasPrefix(rest, "&amp;") || strings.HasPrefix(rest, "&lt;") || strings.HasPrefix(rest, "&gt;"), "잘린 엔티티: %q", s)

		next := strings.IndexByte(rest[1:], '&')
		if next < 0 {
			break
		}
		i += next + 1
	}
}

func stripBold(s string) string {
	return strings.NewReplacer("<b>", "", "</b>", "").Replace(s)
}

func TestRender_DefaultBudget(t *testing.T) {
	t.Parallel()

	blocks := Render([]offer.Offer{{Site: "S", Price: "1,00 TL"}}, policy.IdentitySet{}, RenderOptions{Header: DefaultHeader})

	require.Len(t, blocks, 1)
	assert.True(t, strings.HasPrefix(blocks[0], DefaultHeader))
	assert.NotContains(t, blocks[0], "Kaynak")
}
