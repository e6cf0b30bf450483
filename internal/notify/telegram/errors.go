package telegram

import (
	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
)

var (
	// ErrChatNotFound getUpdates 결과에 채팅 정보가 하나도 없을 때 반환됩니다.
	ErrChatNotFound = apperrors.New(apperrors.NotFound, "채팅 ID를 찾을 수 없습니다. 봇에게 먼저 메시지를 보낸 뒤 다시 시도하세요")
)

// NewErrInvalidBotToken 봇 토큰이 유효하지 않을 때의 에러를 반환합니다.
func NewErrInvalidBotToken(err error) error {
	return apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요")
}

// NewErrInvalidChatID 채팅 ID 형식이 올바르지 않을 때의 에러를 반환합니다.
func NewErrInvalidChatID(chatID string) error {
	return apperrors.Newf(apperrors.InvalidInput, "채팅 ID 형식이 올바르지 않습니다 (chat_id=%q). 숫자 ID 또는 @채널명을 입력하세요", chatID)
}
