package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/darkkaiser/price-notify/internal/offer"
	"github.com/darkkaiser/price-notify/internal/pkg/mark"
	"github.com/darkkaiser/price-notify/internal/policy"
)

const (
	boldOn  = "\033[1m"
	boldOff = "\033[0m"

	// NoOffersMessage 추출 결과가 없을 때의 안내 문구
	NoOffersMessage = "Hiç teklif bulunamadı. Sayfa yapısı değişmiş olabilir."
)

// ConsoleLine 콘솔 출력용 한 줄을 만듭니다. 마크업 없이 출력하며 강조 대상은 ANSI 굵게 표시합니다.
func ConsoleLine(position int, o offer.Offer, highlight bool, ansi bool) string {
	var sb strings.Builder

	sb.WriteString(mark.Number(position))
	if highlight {
		sb.WriteString(mark.Highlight.WithSpace())
	}
	fmt.Fprintf(&sb, " Site: %s | Satıcı: %s | Fiyat: %s", dash(o.Site), dash(o.Seller), dash(o.Price))
	if u := strings.TrimSpace(o.URL); u != "" {
		sb.WriteString(" | Link: ")
		sb.WriteString(u)
	}

	if highlight && ansi {
		return boldOn + sb.String() + boldOff
	}
	return sb.String()
}

// PrintOffers 정렬된 목록을 한 줄씩 출력합니다.
func PrintOffers(w io.Writer, ranked []offer.Offer, highlight policy.IdentitySet, ansi bool) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, NoOffersMessage)
		return
	}
	for i, o := range ranked {
		fmt.Fprintln(w, ConsoleLine(i+1, o, highlight.HighlightMatch(o), ansi))
	}
}

func dash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

// StatusLine 전송 결과를 한 줄로 요약합니다.
func StatusLine(r *Report) string {
	switch r.SkipReason {
	case SkipConditionsNotMet:
		return "Telegram: Koşullar sağlanmadı, mesaj gönderilmeyecek."
	case SkipDryRun:
		return "Telegram: Deneme modu (--dry-run), mesaj gönderilmeyecek."
	case SkipNoBotToken:
		return "Telegram: TELEGRAM_BOT_TOKEN bulunamadı (.env). Mesaj gönderilmeyecek."
	case SkipNoChatID:
		return "Telegram: chat_id bulunamadı. Lütfen --chat=<id> parametresi verin veya TELEGRAM_CHAT_ID ortam değişkenini ayarlayın."
	}

	if r.Delivered {
		return "Telegram: Mesaj gönderildi."
	}
	return "Telegram: Bir veya daha fazla mesaj gönderilemedi."
}
