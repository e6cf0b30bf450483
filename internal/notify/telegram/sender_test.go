package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// =============================================================================
// Setup
// =============================================================================

func setupSenderTest(t *testing.T) (*Sender, *MockTelegramBot) {
	mockBot := NewMockTelegramBot(t)
	s := &Sender{
		client:      mockBot,
		retryDelay:  time.Millisecond,
		rateLimiter: rate.NewLimiter(rate.Inf, 0),
	}
	return s, mockBot
}

func htmlMessage(chatID int64) any {
	return mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return c.ChatID == chatID && c.ParseMode == tgbotapi.ModeHTML
	})
}

func plainMessage(chatID int64) any {
	return mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return c.ChatID == chatID && c.ParseMode == ""
	})
}

// =============================================================================
// Helper Functions
// =============================================================================

func TestSafeSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		limit         int
		expectedChunk string
		expectedRem   string
	}{
		{"제한 이내", "가나다", 3, "가나다", ""},
		{"rune 경계에서 분할", "가나다", 2, "가나", "다"},
		{"줄바꿈에서 분할", "ab\ncdef", 5, "ab", "cdef"},
		{"이모지", "⭐⭐⭐", 1, "⭐", "⭐⭐"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chunk, rem := safeSplit(tt.input, tt.limit)
			assert.Equal(t, tt.expectedChunk, chunk)
			assert.Equal(t, tt.expectedRem, rem)
			assert.True(t, utf8.ValidString(chunk))
		})
	}
}

func TestParseTelegramError(t *testing.T) {
	t.Parallel()

	errVal := tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 42}}
	code, retryAfter := parseTelegramError(errVal)
	assert.Equal(t, 429, code)
	assert.Equal(t, 42, retryAfter)

	code, retryAfter = parseTelegramError(&tgbotapi.Error{Code: 400, Message: "Bad Request"})
	assert.Equal(t, 400, code)
	assert.Equal(t, 0, retryAfter)

	code, _ = parseTelegramError(fmt.Errorf("wrapped: %w", tgbotapi.Error{Code: 502}))
	assert.Equal(t, 502, code)

	code, retryAfter = parseTelegramError(errors.New("network down"))
	assert.Equal(t, 0, code)
	assert.Equal(t, 0, retryAfter)
}

func TestShouldRetry(t *testing.T) {
	t.Parallel()

	assert.True(t, shouldRetry(0))
	assert.True(t, shouldRetry(429))
	assert.True(t, shouldRetry(500))
	assert.True(t, shouldRetry(502))
	assert.False(t, shouldRetry(400))
	assert.False(t, shouldRetry(403))
}

func TestNewMessageConfig(t *testing.T) {
	t.Parallel()

	c, err := newMessageConfig("12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), c.ChatID)

	c, err = newMessageConfig("-100123")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), c.ChatID)

	c, err = newMessageConfig("@fiyat_kanali")
	require.NoError(t, err)
	assert.Equal(t, "@fiyat_kanali", c.ChannelUsername)

	for _, invalid := range []string{"", "abc", "@", "0"} {
		_, err = newMessageConfig(invalid)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput), "chat_id=%q", invalid)
	}
}

// =============================================================================
// Send
// =============================================================================

func TestSend_Success(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return c.ChatID == 12345 && c.Text == "<b>hi</b>" && c.ParseMode == tgbotapi.ModeHTML && c.DisableWebPagePreview
	})).Return(tgbotapi.Message{MessageID: 1}, nil).Once()

	require.NoError(t, s.Send(context.Background(), "12345", "<b>hi</b>"))
	mockBot.AssertExpectations(t)
}

func TestSend_EmptyTextIsNoop(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)

	require.NoError(t, s.Send(context.Background(), "12345", "  "))
	mockBot.AssertNotCalled(t, "Send", mock.Anything)
}

func TestSend_HTMLFallbackToPlainText(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", htmlMessage(12345)).Return(nil, tgbotapi.Error{Code: 400, Message: "can't parse entities"}).Once()
	mockBot.On("Send", plainMessage(12345)).Return(tgbotapi.Message{MessageID: 2}, nil).Once()

	require.NoError(t, s.Send(context.Background(), "12345", "<b>broken"))
	mockBot.AssertExpectations(t)
}

func TestSend_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", htmlMessage(1)).Return(nil, tgbotapi.Error{Code: 502, Message: "Bad Gateway"}).Twice()
	mockBot.On("Send", htmlMessage(1)).Return(tgbotapi.Message{MessageID: 3}, nil).Once()

	require.NoError(t, s.Send(context.Background(), "1", "msg"))
	mockBot.AssertNumberOfCalls(t, "Send", 3)
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", mock.Anything).Return(nil, errors.New("connection reset"))

	err := s.Send(context.Background(), "1", "msg")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	mockBot.AssertNumberOfCalls(t, "Send", maxRetries)
}

func TestSend_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", mock.Anything).Return(nil, tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"})

	err := s.Send(context.Background(), "1", "msg")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
	mockBot.AssertNumberOfCalls(t, "Send", 1)
}

func TestSend_InvalidChatID(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)

	err := s.Send(context.Background(), "not-a-chat", "msg")

	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	mockBot.AssertNotCalled(t, "Send", mock.Anything)
}

func TestSend_CanceledContext(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, "1", "msg")

	assert.ErrorIs(t, err, context.Canceled)
	mockBot.AssertNotCalled(t, "Send", mock.Anything)
}

func TestSend_SplitsLongMessage(t *testing.T) {
	t.Parallel()

	s, mockBot := setupSenderTest(t)
	mockBot.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return utf8.RuneCountInString(c.Text) <= messageMaxLength
	})).Return(tgbotapi.Message{}, nil)

	require.NoError(t, s.Send(context.Background(), "1", strings.Repeat("가", messageMaxLength+100)))
	mockBot.AssertNumberOfCalls(t, "Send", 2)
}

// =============================================================================
// SendAll
// =============================================================================

func TestSendAll(t *testing.T) {
	t.Parallel()

	t.Run("모든 블록 전송 성공", func(t *testing.T) {
		t.Parallel()

		s, mockBot := setupSenderTest(t)
		mockBot.On("Send", mock.Anything).Return(tgbotapi.Message{}, nil)

		assert.True(t, s.SendAll(context.Background(), "1", []string{"a", "b", "c"}))
		mockBot.AssertNumberOfCalls(t, "Send", 3)
	})

	t.Run("일부 실패해도 나머지 블록 전송", func(t *testing.T) {
		t.Parallel()

		s, mockBot := setupSenderTest(t)
		mockBot.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool { return c.Text == "a" })).
			Return(nil, tgbotapi.Error{Code: 403}).Once()
		mockBot.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool { return c.Text == "b" })).
			Return(tgbotapi.Message{}, nil).Once()

		assert.False(t, s.SendAll(context.Background(), "1", []string{"a", "b"}))
		mockBot.AssertExpectations(t)
	})

	t.Run("블록 없음", func(t *testing.T) {
		t.Parallel()

		s, _ := setupSenderTest(t)
		assert.True(t, s.SendAll(context.Background(), "1", nil))
	})
}

// =============================================================================
// New
// =============================================================================

func TestNew(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/botvalid-token/") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"fiyat","username":"fiyat_bot"}}`)
			return
		}
		fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer server.Close()

	endpoint := server.URL + "/bot%s/%s"

	s, err := New(Config{BotToken: "valid-token", APIEndpoint: endpoint})
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, DefaultRetryDelay, s.retryDelay)

	_, err = New(Config{BotToken: "wrong-token", APIEndpoint: endpoint})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}
