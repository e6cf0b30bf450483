// Package policy 정렬된 Offer 목록에 두 가지 가격 임계값 조건을 적용하여 알림 여부를 결정합니다.
package policy

import (
	"math"

	"github.com/darkkaiser/price-notify/internal/offer"
)

// Thresholds 알림 조건에 사용하는 가격 임계값입니다.
type Thresholds struct {
	// MinPrice 최저가가 이 값보다 낮으면 알림 (조건 A)
	MinPrice float64

	// StrictPrice 공식 판매처(StrictMatch) 가격이 이 값보다 낮으면 알림 (조건 B)
	StrictPrice float64
}

// DefaultThresholds 기본 임계값 51000, 50500을 반환합니다.
func DefaultThresholds() Thresholds {
	return Thresholds{MinPrice: 51000, StrictPrice: 50500}
}

// Decision 알림 여부와 그 근거입니다.
type Decision struct {
	CheapestBelowMin   bool `json:"cheapest_below_min"`   // 조건 A
	StrictBelowStrict  bool `json:"strict_below_strict"`  // 조건 B
	Notify             bool `json:"notify"`
	CheapestPriceValid bool `json:"cheapest_price_valid"` // 최저가를 수치로 해석할 수 있었는지 여부
}

// Evaluate 정렬된 목록에 대해 조건 A 또는 조건 B가 성립하면 알림하도록 결정합니다.
//
//   - 조건 A: 첫 번째(최저가) Offer의 가격 < MinPrice
//   - 조건 B: StrictMatch인 Offer 중 가격 < StrictPrice인 것이 존재
//
// 빈 목록이면 알림하지 않습니다. 부수 효과가 없습니다.
func Evaluate(ranked []offer.Offer, th Thresholds, strict IdentitySet) Decision {
	var d Decision

	cheapest, ok := offer.Cheapest(ranked)
	if !ok {
		return d
	}

	minValue := cheapest.Value()
	d.CheapestPriceValid = !math.IsInf(minValue, 1)
	d.CheapestBelowMin = minValue < th.MinPrice

	for _, o := range ranked {
		if strict.StrictMatch(o) && o.Value() < th.StrictPrice {
			d.StrictBelowStrict = true
			break
		}
	}

	d.Notify = d.CheapestBelowMin || d.StrictBelowStrict
	return d
}
