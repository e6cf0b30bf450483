package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darkkaiser/price-notify/internal/fetcher"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "watch"

// SkipReason 메시지를 보내지 않은 이유
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipConditionsNotMet SkipReason = "conditions_not_met"
	SkipDryRun           SkipReason = "dry_run"
	SkipNoBotToken       SkipReason = "no_bot_token"
	SkipNoChatID         SkipReason = "no_chat_id"
)

// Notifier 렌더링된 블록을 외부 메신저로 전송합니다.
type Notifier interface {
	SendAll(ctx context.Context, chatID string, blocks []string) bool
	DiscoverChatID() (string, error)
}

// Config Runner 설정
type Config struct {
	SourceURL string
	ChatID    string
	DryRun    bool
}

// Report 한 번의 실행 결과
type Report struct {
	Result

	RunID      string        `json:"run_id"`
	SourceURL  string        `json:"source_url"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed"`
	ChatID     string        `json:"chat_id,omitempty"`
	Delivered  bool          `json:"delivered"`
	SkipReason SkipReason    `json:"skip_reason,omitempty"`
}

// Runner 페이지를 가져와 Pipeline을 적용하고 조건이 맞으면 전송합니다.
type Runner struct {
	cfg      Config
	pipeline Pipeline
	fetcher  fetcher.Fetcher

	// notifier nil이면 봇 토큰이 없는 것으로 봅니다.
	notifier Notifier

	mu             sync.Mutex
	discoveredChat string
}

func NewRunner(cfg Config, p Pipeline, f fetcher.Fetcher, n Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		pipeline: p,
		fetcher:  f,
		notifier: n,
	}
}

// Pipeline 처리 설정을 반환합니다.
func (r *Runner) Pipeline() Pipeline {
	return r.pipeline
}

// Run 한 번 실행합니다. 페이지를 가져오지 못하면 에러를 반환하고, 전송 실패는 Report.Delivered로 알립니다.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		SourceURL: r.cfg.SourceURL,
		StartedAt: time.Now(),
	}
	logger := applog.WithComponentAndFields(component, applog.Fields{
		"run_id": report.RunID,
		"url":    r.cfg.SourceURL,
	})

	doc, err := fetcher.FetchDocument(ctx, r.fetcher, r.cfg.SourceURL)
	if err != nil {
		logger.WithError(err).Error("상품 페이지를 가져오지 못했습니다")
		return nil, err
	}

	report.Result = r.pipeline.FromDocument(doc)
	logger = logger.WithFields(applog.Fields{
		"offers":      len(report.Offers),
		"source":      report.Source,
		"notify":      report.Decision.Notify,
		"condition_a": report.Decision.CheapestBelowMin,
		"condition_b": report.Decision.StrictBelowStrict,
		"blocks":      len(report.Blocks),
	})
	logger.Info("판매 제안 추출 및 알림 조건 판정을 완료했습니다")

	r.deliver(ctx, report)
	report.Elapsed = time.Since(report.StartedAt)

	return report, nil
}

func (r *Runner) deliver(ctx context.Context, report *Report) {
	logger := applog.WithComponentAndFields(component, applog.Fields{"run_id": report.RunID})

	switch {
	case !report.Decision.Notify:
		report.SkipReason = SkipConditionsNotMet
	case r.cfg.DryRun:
		report.SkipReason = SkipDryRun
	case r.notifier == nil:
		report.SkipReason = SkipNoBotToken
	}
	if report.SkipReason != SkipNone {
		logger.WithField("skip_reason", report.SkipReason).Info("메시지를 전송하지 않습니다")
		return
	}

	chatID, err := r.resolveChatID()
	if err != nil {
		report.SkipReason = SkipNoChatID
		logger.WithError(err).Warn("채팅 ID를 확인할 수 없어 메시지를 전송하지 않습니다")
		return
	}

	report.ChatID = chatID
	report.Delivered = r.notifier.SendAll(ctx, chatID, report.Blocks)

	if report.Delivered {
		logger.WithField("blocks", len(report.Blocks)).Info("메시지를 전송했습니다")
	} else {
		logger.WithField("blocks", len(report.Blocks)).Error("하나 이상의 메시지 블록을 전송하지 못했습니다")
	}
}

// resolveChatID 설정된 채팅 ID, 이전에 찾은 채팅 ID, getUpdates 순서로 확인합니다.
func (r *Runner) resolveChatID() (string, error) {
	if r.cfg.ChatID != "" {
		return r.cfg.ChatID, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.discoveredChat != "" {
		return r.discoveredChat, nil
	}

	id, err := r.notifier.DiscoverChatID()
	if err != nil {
		return "", err
	}
	r.discoveredChat = id
	return id, nil
}
