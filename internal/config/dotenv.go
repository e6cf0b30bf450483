package config

import (
	"errors"
	"io/fs"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	"github.com/joho/godotenv"
)

// LoadDotEnv .env 파일의 변수를 프로세스 환경 변수로 읽어 들입니다. 이미 설정된 환경 변수는 덮어쓰지 않습니다.
// 파일이 없으면 무시합니다.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return apperrors.Wrapf(err, apperrors.InvalidInput, ".env 파일(%s)을 읽을 수 없습니다", name)
		}
	}
	return nil
}
