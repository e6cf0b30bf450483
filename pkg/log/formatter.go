package log

import "github.com/sirupsen/logrus"

// silentFormatter 출력을 hook에 위임하므로 logrus 기본 출력 단계의 포맷팅을 생략합니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}
