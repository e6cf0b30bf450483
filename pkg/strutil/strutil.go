// Package strutil 문자열 처리를 위한 유틸리티 함수들을 제공합니다.
package strutil

import "strings"

// NormalizeSpaces 문자열의 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: "  hello   world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitAndTrim 구분자로 문자열을 분리한 후 각 항목의 앞뒤 공백을 제거하고 빈 항목을 제외합니다.
// 결과가 없으면 nil을 반환합니다.
// 예: "a, , b,c" (구분자 ",") -> ["a", "b", "c"]
func SplitAndTrim(s, sep string) []string {
	var result []string
	for _, token := range strings.Split(s, sep) {
		if token = strings.TrimSpace(token); token != "" {
			result = append(result, token)
		}
	}
	return result
}

// MaskSensitiveData 토큰, 키 등의 민감 정보를 로깅할 수 있도록 마스킹합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}
	if len(data) <= 3 {
		return "***"
	}
	if len(data) <= 12 {
		return data[:4] + "***"
	}
	return data[:4] + "***" + data[len(data)-4:]
}

var htmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTMLText 텔레그램 HTML 모드에서 의미를 갖는 &, <, > 세 문자만 이스케이프합니다.
// 따옴표는 본문 텍스트에서 안전하므로 그대로 둡니다.
func EscapeHTMLText(s string) string {
	return htmlTextEscaper.Replace(s)
}
