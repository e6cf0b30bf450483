// Package config 기본값, JSON 설정 파일, 환경 변수를 차례로 병합하여 애플리케이션 설정을 로드합니다.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/darkkaiser/price-notify/internal/extract"
	"github.com/darkkaiser/price-notify/internal/notify/telegram"
	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	AppName string = "price-notify"

	DefaultFilename = AppName + ".json"

	// EnvPrefix 환경 변수 접두사. 이중 언더스코어(__)는 계층 구분자(.)로 바뀝니다.
	// 예: PRICE_NOTIFY_POLICY__THRESHOLD_MIN_PRICE -> policy.threshold_min_price
	EnvPrefix = "PRICE_NOTIFY_"

	DefaultSourceURL   = "https://www.cimri.com/cep-telefonlari/en-ucuz-apple-iphone-15-5g-128gb-siyah-fiyatlari,2237451716"
	DefaultSchedule    = "0 */30 * * * *"
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMinPrice    = 51000
	DefaultStrictPrice = 50500
)

// legacyEnv 이전 스크립트가 .env에서 읽던 변수 이름입니다. PRICE_NOTIFY_ 변수가 있으면 그 값이 우선합니다.
var legacyEnv = map[string]string{
	"TELEGRAM_BOT_TOKEN": "telegram.bot_token",
	"TELEGRAM_CHAT_ID":   "telegram.chat_id",
}

// AppConfig 애플리케이션의 모든 설정을 포함하는 최상위 구조체
type AppConfig struct {
	Debug    bool           `json:"debug"`
	Source   SourceConfig   `json:"source"`
	Policy   PolicyConfig   `json:"policy"`
	Message  MessageConfig  `json:"message"`
	Telegram TelegramConfig `json:"telegram"`
	HTTP     HTTPConfig     `json:"http"`
	Watch    WatchConfig    `json:"watch"`
	API      APIConfig      `json:"api"`
}

// SourceConfig 감시 대상 페이지
type SourceConfig struct {
	URL        string `json:"url" validate:"required,http_url"`
	BaseOrigin string `json:"base_origin" validate:"required,http_url"`
	Header     string `json:"header" validate:"required"`
}

// PolicyConfig 알림 조건
type PolicyConfig struct {
	ThresholdMinPrice    float64  `json:"threshold_min_price" validate:"gt=0"`
	ThresholdStrictPrice float64  `json:"threshold_strict_price" validate:"gt=0"`
	Identities           []string `json:"identities" validate:"min=1,dive,required"`
}

// MessageConfig 메시지 분할 설정
type MessageConfig struct {
	Budget int `json:"budget" validate:"min=100,max=4096"`
}

// TelegramConfig 텔레그램 봇 설정. BotToken이 비어 있으면 전송하지 않고 콘솔 출력만 합니다.
type TelegramConfig struct {
	BotToken   string        `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	ChatID     string        `json:"chat_id" validate:"omitempty,chat_id"`
	RateLimit  float64       `json:"rate_limit" validate:"gt=0"`
	RateBurst  int           `json:"rate_burst" validate:"min=1"`
	RetryDelay time.Duration `json:"retry_delay" validate:"gt=0"`
}

// HTTPConfig 페이지 요청 설정
type HTTPConfig struct {
	Timeout       time.Duration `json:"timeout" validate:"gt=0"`
	MaxRetries    int           `json:"max_retries" validate:"min=0,max=10"`
	MinRetryDelay time.Duration `json:"min_retry_delay" validate:"gt=0"`
	MaxRetryDelay time.Duration `json:"max_retry_delay" validate:"gtefield=MinRetryDelay"`
	MaxBytes      int64         `json:"max_bytes"`
}

// WatchConfig 주기 실행 설정
type WatchConfig struct {
	Schedule   string `json:"schedule" validate:"required,cron_spec"`
	RunOnStart bool   `json:"run_on_start"`
}

// APIConfig 미리보기 API 서버 설정
type APIConfig struct {
	ListenAddress string `json:"listen_address" validate:"required,hostname_port"`
	BodyLimit     string `json:"body_limit" validate:"required"`
}

// newDefaultConfig 모든 설정의 기본값입니다.
func newDefaultConfig() AppConfig {
	return AppConfig{
		Source: SourceConfig{
			URL:        DefaultSourceURL,
			BaseOrigin: extract.DefaultBaseOrigin,
			Header:     telegram.DefaultHeader,
		},
		Policy: PolicyConfig{
			ThresholdMinPrice:    DefaultMinPrice,
			ThresholdStrictPrice: DefaultStrictPrice,
			Identities:           []string{"hepsiburada", "amazon"},
		},
		Message: MessageConfig{
			Budget: telegram.DefaultBudget,
		},
		Telegram: TelegramConfig{
			RateLimit:  telegram.DefaultRateLimit,
			RateBurst:  telegram.DefaultRateBurst,
			RetryDelay: telegram.DefaultRetryDelay,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			MaxRetries:    2,
			MinRetryDelay: time.Second,
			MaxRetryDelay: 10 * time.Second,
			MaxBytes:      10 * 1024 * 1024,
		},
		Watch: WatchConfig{
			Schedule:   DefaultSchedule,
			RunOnStart: true,
		},
		API: APIConfig{
			ListenAddress: DefaultListenAddr,
			BodyLimit:     "2M",
		},
	}
}

// Load 기본 설정 파일(price-notify.json)이 있으면 읽어 설정을 로드합니다. 파일이 없어도 에러가 아닙니다.
func Load() (*AppConfig, error) {
	return load(DefaultFilename, false)
}

// LoadWithFile 지정된 설정 파일을 읽어 설정을 로드합니다. 파일이 없으면 에러를 반환합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	return load(filename, true)
}

func load(filename string, required bool) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일
	if filename != "" {
		if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
			switch {
			case errors.Is(err, fs.ErrNotExist) && !required:
			case errors.Is(err, fs.ErrNotExist):
				return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
			default:
				return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
			}
		}
	}

	// 3. 이전 스크립트 호환 환경 변수
	if err := k.Load(env.Provider("TELEGRAM_", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 환경 변수 (최우선)
	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &appConfig,
			TagName:          "json",
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정의 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}

// normalizeEnvKey PRICE_NOTIFY_HTTP__MAX_RETRIES -> http.max_retries
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// Validate 각 설정 항목의 필수 값과 항목 간 정합성을 검증합니다.
func (c *AppConfig) Validate() error {
	v := newValidator()

	sections := []struct {
		name string
		s    any
	}{
		{"source", &c.Source},
		{"policy", &c.Policy},
		{"message", &c.Message},
		{"telegram", &c.Telegram},
		{"http", &c.HTTP},
		{"watch", &c.Watch},
		{"api", &c.API},
	}
	for _, sec := range sections {
		if err := checkStruct(v, sec.s, sec.name); err != nil {
			return err
		}
	}

	// 헤더 다음 줄에 최소 한 조각은 담을 수 있어야 모든 블록이 크기 제한을 지킨다.
	if headerLen := len([]rune(c.Source.Header)); c.Message.Budget < headerLen+1+telegram.MinLineRoom {
		return apperrors.Newf(apperrors.InvalidInput, "메시지 블록 크기(message.budget=%d)는 헤더 길이(%d)보다 %d 이상 커야 합니다", c.Message.Budget, headerLen, 1+telegram.MinLineRoom)
	}

	return nil
}

// VerifyRecommendations 동작에는 문제가 없지만 권장되지 않는 설정을 진단합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.Telegram.BotToken == "" {
		warnings = append(warnings, "텔레그램 BotToken이 설정되지 않았습니다. 메시지를 전송하지 않고 콘솔에만 출력합니다")
	}
	if c.Policy.ThresholdStrictPrice > c.Policy.ThresholdMinPrice {
		warnings = append(warnings, fmt.Sprintf("공식 판매처 기준가(%.2f)가 최저가 기준가(%.2f)보다 높습니다", c.Policy.ThresholdStrictPrice, c.Policy.ThresholdMinPrice))
	}
	if !strings.HasPrefix(c.API.ListenAddress, "127.0.0.1:") && !strings.HasPrefix(c.API.ListenAddress, "localhost:") {
		warnings = append(warnings, fmt.Sprintf("미리보기 API가 외부 인터페이스(%s)에서 수신합니다", c.API.ListenAddress))
	}

	return warnings
}
