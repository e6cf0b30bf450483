// Package scheduler 설정된 Cron 스케줄에 맞춰 가격 확인 작업을 반복 실행합니다.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/darkkaiser/price-notify/pkg/cronx"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// DefaultJobTimeout 한 번의 작업 실행에 허용되는 최대 시간
const DefaultJobTimeout = 2 * time.Minute

// Job 스케줄에 따라 실행되는 작업입니다.
type Job func(ctx context.Context) error

// Config Scheduler 설정
type Config struct {
	// Schedule 6필드(초 포함) Cron 표현식 또는 Descriptor
	Schedule string

	// RunOnStart 서비스 시작 직후 한 번 즉시 실행할지 여부
	RunOnStart bool

	// JobTimeout 0이면 DefaultJobTimeout을 사용합니다.
	JobTimeout time.Duration
}

// Scheduler Job을 Cron 스케줄에 맞춰 실행하는 서비스입니다.
type Scheduler struct {
	cfg Config
	job Job

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(cfg Config, job Job) *Scheduler {
	if job == nil {
		panic("Job은 필수입니다")
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}

	return &Scheduler{
		cfg: cfg,
		job: job,
	}
}

// Start 스케줄러를 시작합니다.
//
// 에러를 반환하는 경우에도 serviceStopWG.Done()은 호출됩니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.job == nil {
		serviceStopWG.Done()
		return ErrJobNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	schedule, err := cronx.StandardParser().Parse(s.cfg.Schedule)
	if err != nil {
		serviceStopWG.Done()
		return NewErrInvalidCronSpec(s.cfg.Schedule, err)
	}

	logger := cron.VerbosePrintfLogger(applog.StandardLogger())

	// 주기 실행과 시작 직후 실행이 같은 래퍼를 공유해야 SkipIfStillRunning이 두 실행을 함께 직렬화합니다.
	wrapped := cron.NewChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	).Then(cron.FuncJob(s.runJob))

	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(logger),
	)
	s.cron.Schedule(schedule, wrapped)
	if s.cfg.RunOnStart {
		s.cron.Schedule(&onceSchedule{}, wrapped)
	}

	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"schedule":     s.cfg.Schedule,
		"run_on_start": s.cfg.RunOnStart,
		"next_run":     s.nextRun(),
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 중지하고 진행 중인 작업이 끝날 때까지 기다립니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// runJob 작업 하나를 실행합니다.
//
// 작업의 컨텍스트는 서비스 종료 신호와 분리되어 있으며, Stop은 진행 중인 작업이 끝나기를 기다립니다.
func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"schedule": s.cfg.Schedule,
			"elapsed":  time.Since(start).String(),
			"error":    err,
		}).Error("예약 작업 실행 실패")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"elapsed": time.Since(start).String(),
	}).Debug("예약 작업 실행 완료")
}

func (s *Scheduler) nextRun() string {
	for _, e := range s.cron.Entries() {
		if _, once := e.Schedule.(*onceSchedule); once {
			continue
		}
		if !e.Next.IsZero() {
			return e.Next.Format(time.RFC3339)
		}
	}
	return ""
}

// onceSchedule 처음 한 번만 즉시 실행되는 cron.Schedule입니다.
type onceSchedule struct {
	fired bool
}

func (o *onceSchedule) Next(t time.Time) time.Time {
	if o.fired {
		return time.Time{}
	}
	o.fired = true
	return t
}
