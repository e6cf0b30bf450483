package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	"github.com/darkkaiser/price-notify/pkg/cronx"
	"github.com/go-playground/validator/v10"
)

var (
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)
	telegramChannelRegex  = regexp.MustCompile(`^@[a-zA-Z][a-zA-Z0-9_]{3,31}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"telegram_bot_token": validateTelegramBotToken,
		"chat_id":            validateChatID,
		"cron_spec":          validateCronSpec,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("초기화 치명적 오류: '%s' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", tag, err))
		}
	}

	return v
}

func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// validateChatID 숫자 ID(0 제외) 또는 @채널명
func validateChatID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.HasPrefix(s, "@") {
		return telegramChannelRegex.MatchString(s)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id != 0
}

func validateCronSpec(fl validator.FieldLevel) bool {
	return cronx.Validate(fl.Field().String()) == nil
}

func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	firstErr := validationErrors[0]
	field := contextName + "." + firstErr.Field()

	switch firstErr.Tag() {
	case "telegram_bot_token":
		return apperrors.New(apperrors.InvalidInput, "텔레그램 BotToken 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)")
	case "chat_id":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("텔레그램 채팅 ID 형식이 올바르지 않습니다: '%v' (숫자 ID 또는 @채널명)", firstErr.Value()))
	case "cron_spec":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("스케줄(%s) 설정이 유효하지 않습니다: '%v' (형식: 초 분 시 일 월 요일)", field, firstErr.Value()))
	case "required":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("필수 설정(%s)이 비어 있습니다", field))
	case "http_url":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s는 http(s) URL이어야 합니다: '%v'", field, firstErr.Value()))
	case "hostname_port":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s는 host:port 형식이어야 합니다: '%v'", field, firstErr.Value()))
	}

	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s 설정이 올바르지 않습니다: '%v' (조건: %s=%s)", field, firstErr.Value(), firstErr.Tag(), firstErr.Param()))
}
