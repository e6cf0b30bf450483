package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/darkkaiser/price-notify/internal/config"
	"github.com/darkkaiser/price-notify/internal/extract"
	"github.com/darkkaiser/price-notify/internal/fetcher"
	"github.com/darkkaiser/price-notify/internal/notify/telegram"
	"github.com/darkkaiser/price-notify/internal/pkg/version"
	"github.com/darkkaiser/price-notify/internal/policy"
	"github.com/darkkaiser/price-notify/internal/service"
	"github.com/darkkaiser/price-notify/internal/service/api"
	"github.com/darkkaiser/price-notify/internal/service/scheduler"
	"github.com/darkkaiser/price-notify/internal/watch"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// app 한 번의 실행과 상주 서비스가 공유하는 구성 요소
type app struct {
	cfg      *config.AppConfig
	pipeline watch.Pipeline
	runner   *watch.Runner

	out  io.Writer
	ansi bool
}

// buildPipeline 설정으로부터 처리 단계를 구성합니다.
func buildPipeline(cfg *config.AppConfig) watch.Pipeline {
	opts := extract.DefaultOptions()
	opts.HTML.BaseOrigin = cfg.Source.BaseOrigin

	return watch.Pipeline{
		Extract: opts,
		Thresholds: policy.Thresholds{
			MinPrice:    cfg.Policy.ThresholdMinPrice,
			StrictPrice: cfg.Policy.ThresholdStrictPrice,
		},
		Identities: policy.NewIdentitySet(cfg.Policy.Identities...),
		Render: telegram.RenderOptions{
			Header:    cfg.Source.Header,
			Budget:    cfg.Message.Budget,
			SourceURL: cfg.Source.URL,
		},
	}
}

func newApp(cfg *config.AppConfig, dryRun bool, out io.Writer, ansi bool) *app {
	p := buildPipeline(cfg)

	f := fetcher.New(fetcher.Config{
		Timeout:       cfg.HTTP.Timeout,
		MaxRetries:    cfg.HTTP.MaxRetries,
		MinRetryDelay: cfg.HTTP.MinRetryDelay,
		MaxRetryDelay: cfg.HTTP.MaxRetryDelay,
		MaxBytes:      cfg.HTTP.MaxBytes,
	})

	// 드라이런에서는 봇 API에 접속하지 않는다.
	var n watch.Notifier
	if cfg.Telegram.BotToken != "" && !dryRun {
		sender, err := telegram.New(telegram.Config{
			BotToken:   cfg.Telegram.BotToken,
			Debug:      cfg.Debug,
			RetryDelay: cfg.Telegram.RetryDelay,
			RateLimit:  cfg.Telegram.RateLimit,
			RateBurst:  cfg.Telegram.RateBurst,
		})
		if err != nil {
			applog.WithComponentAndFields("main", applog.Fields{"error": err}).Error("텔레그램 봇 초기화 실패")
			fmt.Fprintf(out, "Telegram: Bot başlatılamadı: %v\n", err)
		} else {
			n = sender
		}
	}

	runner := watch.NewRunner(watch.Config{
		SourceURL: cfg.Source.URL,
		ChatID:    cfg.Telegram.ChatID,
		DryRun:    dryRun,
	}, p, f, n)

	return &app{
		cfg:      cfg,
		pipeline: p,
		runner:   runner,
		out:      out,
		ansi:     ansi,
	}
}

// runOnce 페이지를 한 번 확인하고 결과를 출력합니다.
func (a *app) runOnce(ctx context.Context) error {
	report, err := a.runner.Run(ctx)
	if err != nil {
		return err
	}

	a.printReport(report)
	return nil
}

func (a *app) printReport(report *watch.Report) {
	watch.PrintOffers(a.out, report.Offers, a.pipeline.Identities, a.ansi)
	fmt.Fprintln(a.out, watch.StatusLine(report))
}

// runServices 상주 서비스를 시작하고 ctx가 취소될 때까지 기다립니다.
func (a *app) runServices(ctx context.Context, watchOn, serveOn bool, buildInfo version.Info) error {
	var services []service.Service
	if watchOn {
		services = append(services, scheduler.NewService(scheduler.Config{
			Schedule:   a.cfg.Watch.Schedule,
			RunOnStart: a.cfg.Watch.RunOnStart,
		}, a.runOnce))
	}
	if serveOn {
		services = append(services, api.NewService(api.Config{
			Debug:         a.cfg.Debug,
			ListenAddress: a.cfg.API.ListenAddress,
			BodyLimit:     a.cfg.API.BodyLimit,
		}, a.pipeline, buildInfo))
	}

	serviceStopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	serviceStopWG := &sync.WaitGroup{}

	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			cancel()
			serviceStopWG.Wait()
			return err
		}
	}

	applog.WithComponent("main").Info("서비스 가동 완료")

	<-serviceStopCtx.Done()

	applog.WithComponent("main").Info("종료 신호를 수신했습니다")
	cancel()
	serviceStopWG.Wait()

	return nil
}
