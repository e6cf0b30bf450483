// Package mark 메시지 렌더링에 사용되는 이모지 상수를 중앙 관리합니다.
package mark

import (
	"strconv"
	"strings"
)

// Mark 이모지 상수를 위한 타입입니다.
type Mark string

const (
	// 강조 대상(공식 판매처 등)
	Highlight Mark = "⭐"

	// 가격
	Price Mark = "💲"

	// 출처 링크
	Source Mark = "🔗"

	// 상품 헤더
	Phone Mark = "📱"

	// 숫자 10 키캡
	KeycapTen Mark = "🔟"
)

// keycapSuffix 숫자 뒤에 붙여 키캡 이모지를 만드는 변형 선택자와 결합 문자입니다.
const keycapSuffix = "\uFE0F\u20E3"

// WithSpace 마크 앞에 구분용 공백을 추가하여 반환합니다.
func (m Mark) WithSpace() string {
	if m == "" {
		return ""
	}
	return " " + string(m)
}

func (m Mark) String() string {
	return string(m)
}

// Number 순번을 키캡 이모지로 변환합니다.
// 1~9는 단일 키캡, 10은 🔟, 그 외에는 각 자릿수를 키캡으로 이어 붙입니다. (예: 12 -> 1️⃣2️⃣)
func Number(n int) string {
	if n == 10 {
		return string(KeycapTen)
	}

	digits := strconv.Itoa(n)
	var sb strings.Builder
	for _, ch := range digits {
		if ch >= '0' && ch <= '9' {
			sb.WriteRune(ch)
			sb.WriteString(keycapSuffix)
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
