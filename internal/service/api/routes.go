package api

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes 모든 엔드포인트를 등록합니다.
//
//   - GET  /health
//   - GET  /version
//   - POST /api/v1/preview
func SetupRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	v1 := e.Group("/api/v1")
	v1.POST("/preview", h.PreviewHandler)
}
