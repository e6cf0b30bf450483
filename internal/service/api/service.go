// Package api 추출 결과를 미리 확인할 수 있는 HTTP API 서버를 제공합니다.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/price-notify/internal/pkg/version"
	"github.com/darkkaiser/price-notify/internal/watch"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// componentService 서비스 로그의 컴포넌트 이름
const componentService = "api.service"

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Config API 서비스 설정
type Config struct {
	Debug bool

	// ListenAddress "host:port" 형식
	ListenAddress string

	BodyLimit string
}

// Service API 서버의 생명주기를 관리합니다.
//
// Start는 즉시 반환하고 서버는 고루틴에서 실행되며, serviceStopCtx가 취소되면 Graceful Shutdown 합니다.
type Service struct {
	cfg       Config
	pipeline  watch.Pipeline
	buildInfo version.Info

	// ready 서버가 요청을 받을 수 있게 되면 닫힙니다. 테스트에서 사용합니다.
	ready chan struct{}
	addr  string

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(cfg Config, pipeline watch.Pipeline, buildInfo version.Info) *Service {
	return &Service{
		cfg:       cfg,
		pipeline:  pipeline,
		buildInfo: buildInfo,
	}
}

// Start API 서비스를 시작합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("서비스 시작 진입: API 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(componentService).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true
	s.ready = make(chan struct{})

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponentAndFields(componentService, applog.Fields{
		"listen_address": s.cfg.ListenAddress,
	}).Info("서비스 시작 완료: API 서비스가 요청 대기를 시작합니다")

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:     s.cfg.Debug,
		BodyLimit: s.cfg.BodyLimit,
	})
	SetupRoutes(e, NewHandler(s.pipeline, s.buildInfo))

	return e
}

// startHTTPServer 서버가 종료될 때까지 블로킹되며, 종료되면 done을 닫습니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	applog.WithComponentAndFields(componentService, applog.Fields{
		"listen_address": s.cfg.ListenAddress,
	}).Debug("HTTP 서버 시작")

	go s.notifyReady(e, done)

	s.handleServerError(e.Start(s.cfg.ListenAddress))
}

// notifyReady 리스너가 열리면 실제 주소를 기록하고 ready를 닫습니다.
func (s *Service) notifyReady(e *echo.Echo, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if addr := e.ListenerAddr(); addr != nil {
				s.runningMu.Lock()
				s.addr = addr.String()
				s.runningMu.Unlock()
				close(s.ready)
				return
			}
		}
	}
}

func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(componentService).Info("HTTP 서버가 정상적으로 종료되었습니다")
		return
	}

	applog.WithComponentAndFields(componentService, applog.Fields{
		"listen_address": s.cfg.ListenAddress,
		"error":          err,
	}).Error("HTTP 서버 실행 중 치명적인 오류가 발생했습니다")
}

func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(componentService).Info("종료 절차 진입: API 서비스 중지 시그널을 수신했습니다")
	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 먼저 종료된 경우
		applog.WithComponent(componentService).Error("HTTP 서버가 예기치 않게 종료되었습니다")
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(componentService, applog.Fields{
			"error": err,
		}).Error("HTTP 서버 종료 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스 종료 완료")
}
