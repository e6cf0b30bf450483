package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// =============================================================================
// Logger Adapter
// =============================================================================

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		echoLevel log.Lvl
		appLevel  applog.Level
	}{
		{log.DEBUG, applog.DebugLevel},
		{log.INFO, applog.InfoLevel},
		{log.WARN, applog.WarnLevel},
		{log.ERROR, applog.ErrorLevel},
	}

	for _, tt := range tests {
		l := Logger{Logger: logrus.New()}
		l.SetLevel(tt.echoLevel)

		assert.Equal(t, tt.appLevel, l.Logger.Level)
		assert.Equal(t, tt.echoLevel, l.Level())
	}

	t.Run("대응 레벨이 없으면 OFF", func(t *testing.T) {
		t.Parallel()

		l := Logger{Logger: logrus.New()}
		l.Logger.SetLevel(applog.TraceLevel)
		assert.Equal(t, log.OFF, l.Level())

		l.SetLevel(log.OFF)
		assert.Equal(t, applog.TraceLevel, l.Logger.Level)
	})
}

func TestLogger_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := Logger{Logger: logrus.New()}
	l.SetOutput(&buf)

	l.Infoj(log.JSON{"k": "v"})

	assert.Same(t, &buf, l.Output())
	assert.Contains(t, buf.String(), "k=v")
	assert.Empty(t, l.Prefix())
}

// =============================================================================
// HTTP Logging
// =============================================================================

func TestMaskSensitiveQueryParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"민감 정보 없음", "/api/v1/preview?id=1", "/api/v1/preview?id=1"},
		{"토큰 마스킹", "/x?token=1234567890abcdef&id=1", "/x?id=1&token=1234%2A%2A%2Acdef"},
		{"짧은 값", "/x?secret=ab", "/x?secret=%2A%2A%2A"},
		{"파싱 불가", "%zz", "%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, maskSensitiveQueryParams(tt.uri))
		})
	}
}

func TestHTTPLogger_PassesErrorToHandler(t *testing.T) {
	t.Parallel()

	e := echo.New()
	var handled error
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		handled = err
		_ = c.NoContent(http.StatusTeapot)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	want := errors.New("boom")
	err := HTTPLogger()(func(echo.Context) error { return want })(c)

	require.NoError(t, err)
	assert.Equal(t, want, handled)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

// =============================================================================
// Panic Recovery
// =============================================================================

func TestPanicRecovery(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("문자열 panic", func(t *testing.T) {
		t.Parallel()

		c := e.NewContext(req, httptest.NewRecorder())
		err := PanicRecovery()(func(echo.Context) error { panic("boom") })(c)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("error panic", func(t *testing.T) {
		t.Parallel()

		want := errors.New("fail")
		c := e.NewContext(req, httptest.NewRecorder())
		err := PanicRecovery()(func(echo.Context) error { panic(want) })(c)

		assert.Equal(t, want, err)
	})

	t.Run("정상 처리", func(t *testing.T) {
		t.Parallel()

		c := e.NewContext(req, httptest.NewRecorder())
		err := PanicRecovery()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)

		assert.NoError(t, err)
	})
}
