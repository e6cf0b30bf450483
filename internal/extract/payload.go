package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// PayloadOptions 문서에 포함된 JSON 데이터(JSON-LD, 프레임워크 상태 등)를 찾는 방법입니다.
type PayloadOptions struct {
	// Selector JSON을 담은 script 요소 선택자
	Selector string `json:"selector"`

	// Path 지정하면 각 페이로드에서 이 gjson 경로의 하위 트리만 사용합니다. (예: props.pageProps)
	Path string `json:"path"`
}

// DefaultPayloadOptions JSON-LD와 Next.js 상태 스크립트를 찾는 기본값을 반환합니다.
func DefaultPayloadOptions() PayloadOptions {
	return PayloadOptions{
		Selector: `script[type="application/ld+json"], script#__NEXT_DATA__, script[type="application/json"]`,
	}
}

// EmbeddedPayloads 문서 순서대로 유효한 JSON 페이로드를 찾아 일반 트리(map[string]any, []any)로 변환합니다.
// JSON이 아니거나 Path가 존재하지 않는 페이로드는 건너뜁니다.
func EmbeddedPayloads(doc *goquery.Document, opts PayloadOptions) []any {
	if doc == nil || opts.Selector == "" {
		return nil
	}

	var payloads []any
	doc.Find(opts.Selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := ParsePayload(s.Text(), opts.Path); ok {
			payloads = append(payloads, v)
		}
	})
	return payloads
}

// Object 키를 문서에 나온 순서대로 보존하는 JSON 객체입니다.
// 같은 키가 반복되면 위치는 처음 나온 곳을, 값은 마지막 값을 사용합니다.
type Object struct {
	Keys   []string
	Values map[string]any
}

func (o *Object) keyView() keyView {
	return newOrderedKeyView(o.Values, o.Keys)
}

// ParsePayload JSON 텍스트를 검증하고 path(비어 있으면 전체)의 값을 트리로 반환합니다.
// 객체는 *Object, 배열은 []any, 나머지는 스칼라(string, float64, bool)입니다.
func ParsePayload(raw, path string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return nil, false
	}

	result := gjson.Parse(raw)
	if path != "" {
		result = result.Get(path)
		if !result.Exists() {
			return nil, false
		}
	}

	if result.Type == gjson.Null {
		return nil, false
	}
	return toTree(result), true
}

// toTree gjson 결과를 문서 순서를 유지한 트리로 변환합니다.
func toTree(r gjson.Result) any {
	switch {
	case r.IsObject():
		obj := &Object{Values: make(map[string]any)}
		r.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, exists := obj.Values[k]; !exists {
				obj.Keys = append(obj.Keys, k)
			}
			obj.Values[k] = toTree(value)
			return true
		})
		return obj

	case r.IsArray():
		arr := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, toTree(value))
			return true
		})
		return arr

	default:
		return r.Value()
	}
}
