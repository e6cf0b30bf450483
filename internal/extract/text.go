package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// nodeText 하위 텍스트 노드들을 앞뒤 공백을 제거한 뒤 공백 하나로 이어 붙입니다.
func nodeText(s *goquery.Selection) string {
	var parts []string

	stack := make([]*html.Node, 0, 16)
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, s.Nodes[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			continue
		case html.CommentNode:
			continue
		}

		// 문서 순서를 유지하기 위해 마지막 자식부터 쌓는다.
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}

	return strings.Join(parts, " ")
}

// containsFold 대소문자를 구분하지 않고 substr이 s에 포함되어 있는지 검사합니다.
// Caser는 상태를 가지므로 호출마다 새로 만든다.
func containsFold(s, substr string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(substr))
}
