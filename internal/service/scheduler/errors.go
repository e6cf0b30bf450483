package scheduler

import (
	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
)

// ErrJobNotInitialized 실행할 Job 없이 서비스를 시작하려 할 때 반환하는 에러입니다.
var ErrJobNotInitialized = apperrors.New(apperrors.Internal, "Job 함수가 초기화되지 않았습니다")

// NewErrInvalidCronSpec Cron 표현식이 올바르지 않아 스케줄 등록에 실패했을 때 반환하는 에러를 생성합니다.
func NewErrInvalidCronSpec(spec string, cause error) error {
	return apperrors.Wrapf(cause, apperrors.InvalidInput, "스케줄 등록 실패: 잘못된 Cron 표현식입니다 (Schedule='%s')", spec)
}
