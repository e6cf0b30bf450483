package telegram

import (
	"strconv"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	applog "github.com/darkkaiser/price-notify/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DiscoverChatID getUpdates 결과에서 가장 최근 메시지의 채팅 ID를 찾습니다.
// 봇에게 한 번이라도 말을 건 채팅방이 없으면 ErrChatNotFound를 반환합니다.
func (s *Sender) DiscoverChatID() (string, error) {
	updates, err := s.client.GetUpdates(tgbotapi.UpdateConfig{Offset: 0, Limit: 100, Timeout: 0})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "텔레그램 getUpdates 호출에 실패했습니다")
	}

	id, ok := latestChatID(updates)
	if !ok {
		return "", ErrChatNotFound
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"chat_id": id,
		"updates": len(updates),
	}).Info("getUpdates 결과에서 채팅 ID를 찾았습니다")

	return strconv.FormatInt(id, 10), nil
}

// latestChatID 최신 업데이트부터 거꾸로 살피며 message 또는 edited_message의 채팅 ID를 반환합니다.
func latestChatID(updates []tgbotapi.Update) (int64, bool) {
	for i := len(updates) - 1; i >= 0; i-- {
		u := updates[i]
		for _, m := range []*tgbotapi.Message{u.Message, u.EditedMessage} {
			if m != nil && m.Chat != nil && m.Chat.ID != 0 {
				return m.Chat.ID, true
			}
		}
	}
	return 0, false
}
