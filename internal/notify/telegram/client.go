package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// component 로깅용 컴포넌트 이름
const component = "notify.telegram"

// client 텔레그램 봇 API와의 통신을 추상화한 인터페이스입니다.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// tgClient tgbotapi.BotAPI를 래핑하여 client 인터페이스를 구현합니다.
type tgClient struct {
	*tgbotapi.BotAPI
}

var _ client = (*tgClient)(nil)
