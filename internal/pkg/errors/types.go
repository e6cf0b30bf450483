package errors

//go:generate stringer -type=ErrorType

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType int

const (
	// Unknown 분류할 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류
	Internal

	// System 디스크, 네트워크 등 인프라 수준의 오류
	System

	// Unauthorized 자격증명(봇 토큰 등)이 거부됨
	Unauthorized

	// InvalidInput 잘못된 입력값 또는 설정값
	InvalidInput

	// NotFound 대상을 찾을 수 없음 (chat ID 탐색 실패 등)
	NotFound

	// ExecutionFailed 외부 호출 또는 작업 수행 실패
	ExecutionFailed

	// ParsingFailed HTML/JSON 등 데이터 파싱 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 원격 서비스 일시적 사용 불가
	Unavailable
)
