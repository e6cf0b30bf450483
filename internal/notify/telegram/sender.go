package telegram

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	applog "github.com/darkkaiser/price-notify/pkg/log"
	"github.com/darkkaiser/price-notify/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// messageMaxLength 텔레그램 Bot API의 메시지 최대 길이(4096자)에 여유를 둔 값입니다.
	messageMaxLength = 3900

	maxRetries = 3

	DefaultRetryDelay  = time.Second
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 1.0
	DefaultRateBurst   = 3
)

// Config Sender 생성 설정입니다.
type Config struct {
	BotToken    string
	APIEndpoint string // 비어 있으면 tgbotapi.APIEndpoint
	Debug       bool

	HTTPTimeout time.Duration
	RetryDelay  time.Duration
	RateLimit   float64 // 초당 허용 요청 수
	RateBurst   int
}

// Sender 렌더링된 블록을 텔레그램 채팅방으로 전송합니다.
type Sender struct {
	client client

	retryDelay  time.Duration
	rateLimiter *rate.Limiter
}

// New 봇 API 클라이언트를 초기화하여 Sender를 생성합니다.
func New(cfg Config) (*Sender, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"bot_token": strutil.MaskSensitiveData(cfg.BotToken),
	}).Debug("텔레그램 봇 API 클라이언트를 초기화합니다")

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	// http.DefaultClient는 타임아웃이 없으므로 명시적으로 지정한다.
	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, NewErrInvalidBotToken(err)
	}
	botAPI.Debug = cfg.Debug

	return newSender(&tgClient{BotAPI: botAPI}, cfg), nil
}

func newSender(c client, cfg Config) *Sender {
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = DefaultRateBurst
	}

	return &Sender{
		client:      c,
		retryDelay:  retryDelay,
		rateLimiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// SendAll 블록을 순서대로 전송합니다. 모든 블록이 전송되면 true를 반환합니다.
// 중간에 실패해도 나머지 블록의 전송은 계속 시도합니다.
func (s *Sender) SendAll(ctx context.Context, chatID string, blocks []string) bool {
	ok := true
	for i, block := range blocks {
		if err := s.Send(ctx, chatID, block); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": chatID,
				"block":   i + 1,
				"blocks":  len(blocks),
				"error":   err,
			}).Error("블록 전송에 실패했습니다")

			ok = false
			if ctx.Err() != nil {
				return false
			}
		}
	}
	return ok
}

// Send 한 개의 메시지를 전송합니다. 텔레그램 제한을 넘는 메시지는 나눠서 보냅니다.
func (s *Sender) Send(ctx context.Context, chatID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	base, err := newMessageConfig(chatID)
	if err != nil {
		return err
	}

	for text != "" {
		var chunk string
		chunk, text = safeSplit(text, messageMaxLength)
		if err := s.attemptSendWithRetry(ctx, base, chunk, true); err != nil {
			return err
		}
	}
	return nil
}

// newMessageConfig 숫자 ID는 NewMessage로, @채널명은 NewMessageToChannel로 구성합니다.
func newMessageConfig(chatID string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if strings.HasPrefix(chatID, "@") && len(chatID) > 1 {
		return tgbotapi.NewMessageToChannel(chatID, ""), nil
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return tgbotapi.MessageConfig{}, NewErrInvalidChatID(chatID)
	}
	return tgbotapi.NewMessage(id, ""), nil
}

// attemptSendWithRetry 전송을 시도하고 일시적인 오류(429, 5xx, 네트워크)는 재시도합니다.
// HTML 모드에서 400 오류가 발생하면 PlainText 모드로 전환하여 다시 보냅니다.
func (s *Sender) attemptSendWithRetry(ctx context.Context, base tgbotapi.MessageConfig, message string, useHTML bool) error {
	messageConfig := base
	messageConfig.Text = message
	messageConfig.DisableWebPagePreview = true
	if useHTML {
		messageConfig.ParseMode = tgbotapi.ModeHTML
	} else {
		messageConfig.ParseMode = ""
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				applog.WithComponentAndFields(component, applog.Fields{
					"error":   ctx.Err(),
					"attempt": attempt,
				}).Error("작업 중단: 발송 제한 시간(Timeout)을 초과하였습니다")
			}
			return ctx.Err()
		default:
		}

		_, err := s.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"attempt":        attempt,
				"mode":           formatParseMode(messageConfig.ParseMode),
				"message_length": utf8.RuneCountInString(message),
			}).Info("발송 성공: 텔레그램 API로 메시지가 정상 전송되었습니다")

			return nil
		}

		lastErr = err
		applog.WithComponentAndFields(component, applog.Fields{
			"attempt": attempt,
			"error":   err,
			"mode":    formatParseMode(messageConfig.ParseMode),
		}).Warn("발송 실패: 텔레그램 API 호출에서 오류가 발생했습니다")

		errCode, retryAfter := parseTelegramError(err)

		if useHTML && errCode == http.StatusBadRequest {
			applog.WithComponentAndFields(component, applog.Fields{
				"error":   err,
				"attempt": attempt,
			}).Warn("HTML 파싱 오류(400): PlainText 모드로 자동 전환하여 재시도합니다")

			return s.attemptSendWithRetry(ctx, base, message, false)
		}

		if !shouldRetry(errCode) {
			return apperrors.Wrap(err, apperrors.ExecutionFailed, "재시도 불가능한 텔레그램 API 오류가 발생했습니다")
		}

		if attempt >= maxRetries {
			break
		}

		backoff := s.delayForRetry(retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return apperrors.Wrapf(lastErr, apperrors.Unavailable, "최대 재시도 횟수(%d회)를 초과하였습니다", maxRetries)
}

// shouldRetry 429와 5xx, 그리고 상태 코드가 없는 네트워크 오류는 재시도합니다.
func shouldRetry(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		return statusCode == http.StatusTooManyRequests
	}
	return true
}

func (s *Sender) delayForRetry(retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	return s.retryDelay
}

func formatParseMode(mode string) string {
	if mode == tgbotapi.ModeHTML {
		return "HTML"
	}
	return "PlainText"
}

// parseTelegramError 텔레그램 API 에러에서 에러 코드와 Retry-After(초)를 추출합니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	var apiErr tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}

	var apiErrPtr *tgbotapi.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.ResponseParameters.RetryAfter
	}

	return 0, 0
}

// safeSplit 문자열을 limit개 이하의 rune과 나머지로 나눕니다.
// 가능하면 마지막 줄바꿈에서 자릅니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if utf8.RuneCountInString(s) <= limit {
		return s, ""
	}

	head, _ := splitRunes(s, limit)
	if i := strings.LastIndexByte(head, '\n'); i > 0 {
		return s[:i], s[i+1:]
	}
	return head, s[len(head):]
}

// splitRunes 문자열 s를 앞쪽 최대 n개의 rune과 나머지로 나눕니다.
func splitRunes(s string, n int) (head, tail string) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], s[i:]
		}
		count++
	}
	return s, ""
}
