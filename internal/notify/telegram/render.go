package telegram

import (
	"strings"
	"unicode/utf8"

	"github.com/darkkaiser/price-notify/internal/offer"
	"github.com/darkkaiser/price-notify/internal/pkg/mark"
	"github.com/darkkaiser/price-notify/internal/policy"
	"github.com/darkkaiser/price-notify/pkg/strutil"
)

const (
	// DefaultBudget 블록 하나의 최대 문자 수입니다. 텔레그램 제한(4096자)보다 여유를 둡니다.
	DefaultBudget = 3800

	// DefaultHeader 모든 블록의 첫 줄입니다.
	DefaultHeader = "<b>-------> " + string(mark.Phone) + " Apple iPhone 15 128GB Siyah</b>"

	// MinLineRoom 헤더 다음 줄에 남아야 하는 최소 문자 수입니다.
	// 긴 줄을 나눌 때 <b></b>와 가장 긴 엔티티(&amp;) 하나가 한 블록에 들어가야 합니다.
	MinLineRoom = len(boldOpen) + len(boldClose) + len("&amp;")

	placeholder = "-"

	boldOpen  = "<b>"
	boldClose = "</b>"

	// maxEntityBytes 엔티티로 인정하는 '&'부터 ';'까지의 최대 길이입니다.
	maxEntityBytes = 10
)

// RenderOptions 메시지 렌더링 설정입니다.
type RenderOptions struct {
	Header    string
	Budget    int    // 블록당 최대 문자 수 (rune 기준)
	SourceURL string // 마지막 블록 끝에 붙는 출처 링크
}

// RenderLine 순번(1부터)과 Offer로 HTML 한 항목을 만듭니다. 강조 대상이면 ⭐ 표시 후 전체를 굵게 표시합니다.
//
//	1️⃣ ⭐ Site: Amazon | Satıcı: Amazon
//	💲 Fiyat: 48.000,00 TL | Link: https://...
func RenderLine(position int, o offer.Offer, highlight bool) string {
	var sb strings.Builder

	sb.WriteString(mark.Number(position))
	if highlight {
		sb.WriteString(mark.Highlight.WithSpace())
	}
	sb.WriteString(" Site: ")
	sb.WriteString(strutil.EscapeHTMLText(orPlaceholder(o.Site)))
	sb.WriteString(" | Satıcı: ")
	sb.WriteString(strutil.EscapeHTMLText(orPlaceholder(o.Seller)))
	sb.WriteString(" \n")
	sb.WriteString(mark.Price.String())
	sb.WriteString(" Fiyat: ")
	sb.WriteString(strutil.EscapeHTMLText(orPlaceholder(o.Price)))
	if u := strings.TrimSpace(o.URL); u != "" {
		sb.WriteString(" | Link: ")
		sb.WriteString(strutil.EscapeHTMLText(u))
	}

	if highlight {
		return boldOpen + sb.String() + boldClose
	}
	return sb.String()
}

// Render 정렬된 Offer 목록을 블록 단위의 메시지로 나눕니다.
//
// 모든 블록은 헤더로 시작하며, 다음 항목을 붙였을 때 Budget을 넘으면 새 블록을 시작합니다.
// 출처 링크는 마지막 블록에만 붙습니다. 목록이 비어 있으면 nil을 반환합니다.
// Budget이 헤더 길이 + 1 + MinLineRoom 이상이면 모든 블록은 Budget 이하입니다.
func Render(ranked []offer.Offer, highlight policy.IdentitySet, opts RenderOptions) []string {
	if len(ranked) == 0 {
		return nil
	}

	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	c := chunker{header: opts.Header, budget: budget}
	for i, o := range ranked {
		c.add(RenderLine(i+1, o, highlight.HighlightMatch(o)))
	}

	if src := strings.TrimSpace(opts.SourceURL); src != "" {
		c.appendTrailer("\n\n" + mark.Source.String() + " Kaynak: " + strutil.EscapeHTMLText(src))
	}

	return c.finish()
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return placeholder
	}
	return s
}

// chunker 헤더로 시작하는 블록에 줄을 누적합니다. 길이는 rune 수로 계산합니다.
type chunker struct {
	header string
	budget int

	blocks  []string
	cur     strings.Builder
	curLen  int
	started bool
}

func (c *chunker) startBlock() {
	c.cur.Reset()
	c.cur.WriteString(c.header)
	c.curLen = utf8.RuneCountInString(c.header)
	c.started = true
}

func (c *chunker) flush() {
	if c.started {
		c.blocks = append(c.blocks, c.cur.String())
	}
	c.started = false
}

// appendToCurrent 현재 블록에 줄을 붙입니다. 헤더가 비어 있는 블록의 첫 줄에는 줄바꿈을 넣지 않습니다.
func (c *chunker) appendToCurrent(line string, lineLen int) {
	if c.curLen > 0 {
		c.cur.WriteByte('\n')
		c.curLen++
	}
	c.cur.WriteString(line)
	c.curLen += lineLen
}

func (c *chunker) add(line string) {
	if !c.started {
		c.startBlock()
	}

	lineLen := utf8.RuneCountInString(line)
	if c.curLen+1+lineLen <= c.budget {
		c.appendToCurrent(line, lineLen)
		return
	}

	// 헤더만 있는 블록은 닫지 않는다.
	if c.curLen > utf8.RuneCountInString(c.header) {
		c.flush()
		c.startBlock()
	}

	c.addSplit(line)
}

// addSplit 줄을 현재 블록에 담고, 남은 공간보다 길면 나눠서 다음 블록들에 이어 담습니다.
//
// 엔티티(&amp; 등)는 중간에서 자르지 않으며, 굵게 표시된 줄은 조각마다 <b>...</b>로 다시 감쌉니다.
func (c *chunker) addSplit(line string) {
	openTag, closeTag, body := "", "", line
	if len(line) >= len(boldOpen)+len(boldClose) && strings.HasPrefix(line, boldOpen) && strings.HasSuffix(line, boldClose) {
		openTag, closeTag = boldOpen, boldClose
		body = line[len(boldOpen) : len(line)-len(boldClose)]
	}
	wrapLen := len(openTag) + len(closeTag)

	for {
		room := c.budget - c.curLen - 1
		lineLen := wrapLen + utf8.RuneCountInString(body)
		if lineLen <= room {
			c.appendToCurrent(openTag+body+closeTag, lineLen)
			return
		}

		piece, rest := splitHTMLText(body, room-wrapLen)
		if piece == "" {
			// 조각 하나도 담을 수 없으면 나누지 않는다.
			c.appendToCurrent(openTag+body+closeTag, lineLen)
			return
		}

		c.appendToCurrent(openTag+piece+closeTag, wrapLen+utf8.RuneCountInString(piece))
		c.flush()
		c.startBlock()
		body = rest
	}
}

// appendTrailer 마지막 블록 끝에 붙입니다. 넘치면 헤더와 함께 새 블록으로 보내고,
// 새 블록에도 들어가지 않으면 앞의 빈 줄을 빼고 일반 줄처럼 나눠 담습니다.
func (c *chunker) appendTrailer(trailer string) {
	n := utf8.RuneCountInString(trailer)
	if c.curLen+n > c.budget && c.curLen > utf8.RuneCountInString(c.header) {
		c.flush()
		c.startBlock()
	}

	if c.curLen+n <= c.budget {
		c.cur.WriteString(trailer)
		c.curLen += n
		return
	}

	c.addSplit(strings.TrimLeft(trailer, "\n"))
}

func (c *chunker) finish() []string {
	c.flush()
	return c.blocks
}

// splitHTMLText 이스케이프된 텍스트 s를 앞쪽 최대 n개의 rune과 나머지로 나눕니다.
// rune 경계에서만 자르며, '&'로 시작하는 엔티티는 하나의 단위로 취급합니다.
func splitHTMLText(s string, n int) (head, tail string) {
	count := 0
	for pos := 0; pos < len(s); {
		size, runes := entityLen(s[pos:])
		if size == 0 {
			_, size = utf8.DecodeRuneInString(s[pos:])
			runes = 1
		}

		if count+runes > n {
			return s[:pos], s[pos:]
		}
		count += runes
		pos += size
	}
	return s, ""
}

// entityLen s가 엔티티로 시작하면 그 바이트 수와 rune 수를 반환합니다. 아니면 0입니다.
func entityLen(s string) (size, runes int) {
	if !strings.HasPrefix(s, "&") {
		return 0, 0
	}

	end := strings.IndexByte(s, ';')
	if end <= 0 || end >= maxEntityBytes {
		return 0, 0
	}
	return end + 1, utf8.RuneCountInString(s[:end+1])
}
