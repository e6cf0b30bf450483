package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Telegram Bot Mock
// =============================================================================

var _ client = (*MockTelegramBot)(nil)

// MockTelegramBot client 인터페이스의 Mock 구현체입니다.
type MockTelegramBot struct {
	mock.Mock
}

func NewMockTelegramBot(t *testing.T) *MockTelegramBot {
	m := &MockTelegramBot{}
	m.Test(t)
	return m
}

func (m *MockTelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)

	var msg tgbotapi.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(tgbotapi.Message)
	}
	return msg, args.Error(1)
}

func (m *MockTelegramBot) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	args := m.Called(config)

	var updates []tgbotapi.Update
	if args.Get(0) != nil {
		updates = args.Get(0).([]tgbotapi.Update)
	}
	return updates, args.Error(1)
}
