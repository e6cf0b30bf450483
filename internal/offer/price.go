package offer

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Currency 가격 표기에 붙는 통화 표시입니다.
const Currency = "TL"

var (
	// 51.299,00 TL
	currencyPricePattern = regexp.MustCompile(`(?i)(\d+[\d.,]*)\s*TL`)

	// 통화 표시가 없는 숫자열
	barePricePattern = regexp.MustCompile(`\d+[\d.,]*`)

	// 숫자 문자열 전체가 가격 형태인지 검사
	barePriceFullPattern = regexp.MustCompile(`^\d+[\d.,]*$`)

	// 구분자를 정리한 뒤 첫 번째 숫자 토큰
	numericTokenPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// NormalizeText 문자열에서 가격을 찾아 "<숫자> TL" 형태로 반환합니다.
// 통화 표시가 붙은 숫자를 먼저 찾고, 없으면 처음 나오는 숫자열을 사용합니다.
func NormalizeText(s string) (string, bool) {
	if m := currencyPricePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]) + " " + Currency, true
	}
	if m := barePricePattern.FindString(s); m != "" {
		return m + " " + Currency, true
	}
	return "", false
}

// NormalizeCurrencyText 통화 표시가 붙은 숫자만 가격으로 인정합니다.
// HTML 가격 노드처럼 통화 표시가 항상 함께 렌더링되는 곳에서 사용합니다.
func NormalizeCurrencyText(s string) (string, bool) {
	m := currencyPricePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]) + " " + Currency, true
}

// FormatAmount 수치 가격을 천 단위 점, 소수점 쉼표, 소수 둘째 자리 형식으로 표시합니다.
// 예: 51299 -> "51.299,00 TL"
func FormatAmount(v float64) string {
	raw := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var sb strings.Builder
	if v < 0 {
		sb.WriteByte('-')
	}
	first := len(intPart) % 3
	if first == 0 {
		first = 3
	}
	sb.WriteString(intPart[:first])
	for i := first; i < len(intPart); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(intPart[i : i+3])
	}
	sb.WriteByte(',')
	sb.WriteString(fracPart)
	sb.WriteString(" " + Currency)
	return sb.String()
}

// Normalize 숫자 또는 문자열 형태의 가격을 표시용 문자열로 변환합니다.
// 그 외 타입이거나 가격을 찾지 못하면 ok=false입니다.
func Normalize(v any) (string, bool) {
	if f, ok := toFloat(v); ok {
		return FormatAmount(f), true
	}
	if s, ok := v.(string); ok {
		return NormalizeText(s)
	}
	return "", false
}

// LooksLikePrice 값이 가격 후보인지 검사합니다.
// 숫자는 0보다 커야 하고, 문자열은 통화 표시가 붙은 숫자를 포함하거나 전체가 숫자열이어야 합니다.
func LooksLikePrice(v any) bool {
	if f, ok := toFloat(v); ok {
		return f > 0
	}
	if s, ok := v.(string); ok {
		return currencyPricePattern.MatchString(s) || barePriceFullPattern.MatchString(s)
	}
	return false
}

// Value 표시용 가격 문자열을 수치로 변환합니다. 해석할 수 없으면 +Inf를 반환하며 실패하지 않습니다.
//
// 통화 표시를 지우고 천 단위 점을 제거한 뒤 소수점 쉼표를 점으로 바꿔 첫 숫자 토큰을 읽습니다.
func Value(price string) float64 {
	if price == "" {
		return math.Inf(1)
	}

	s := strings.NewReplacer("TL", "", "tl", "").Replace(price)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	token := numericTokenPattern.FindString(s)
	if token == "" {
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return math.Inf(1)
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	}
	return 0, false
}
