// Package service 백그라운드에서 실행되는 서비스들의 공통 생명주기 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 시작 후 serviceStopCtx가 취소되면 스스로 종료하는 서비스입니다.
//
// 호출자는 Start 전에 serviceStopWG.Add(1)을 호출해야 하며, 서비스는 종료가 끝나면
// (Start가 에러를 반환한 경우 포함) 반드시 serviceStopWG.Done()을 호출합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
