package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/price-notify/internal/extract"
	"github.com/darkkaiser/price-notify/internal/fetcher"
	"github.com/darkkaiser/price-notify/internal/pkg/version"
	"github.com/darkkaiser/price-notify/internal/watch"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

// componentHandler 핸들러 로그의 컴포넌트 이름
const componentHandler = "api.handler"

// HealthResponse GET /health 응답
type HealthResponse struct {
	Status string `json:"status"`
	Uptime int64  `json:"uptime"`
}

// PreviewRequest POST /api/v1/preview 요청 본문입니다. HTML과 Data 중 하나는 있어야 하며 둘 다 있으면 HTML을 사용합니다.
type PreviewRequest struct {
	// HTML 상품 목록 페이지 원문
	HTML string `json:"html" validate:"required_without=Data"`

	// ContentType HTML의 Content-Type 헤더 값 (charset 판별용)
	ContentType string `json:"content_type"`

	// Data 임베디드 페이로드와 같은 형태의 JSON 트리
	Data json.RawMessage `json:"data" validate:"required_without=HTML"`

	// SourceURL 메시지 끝의 출처 링크를 덮어씁니다.
	SourceURL string `json:"source_url" validate:"omitempty,http_url"`
}

// Handler HTTP 요청 핸들러
type Handler struct {
	pipeline  watch.Pipeline
	buildInfo version.Info

	serverStartTime time.Time

	validateOnce sync.Once
	validate     *validator.Validate
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(pipeline watch.Pipeline, buildInfo version.Info) *Handler {
	return &Handler{
		pipeline:  pipeline,
		buildInfo: buildInfo,

		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler 서버 상태를 반환합니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: int64(time.Since(h.serverStartTime).Seconds()),
	})
}

// VersionHandler 빌드 정보를 반환합니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}

// PreviewHandler 전달받은 페이지 또는 JSON 트리에 처리 단계를 적용하고, 전송 없이 결과만 반환합니다.
func (h *Handler) PreviewHandler(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return newBadRequestError("요청 본문이 올바른 JSON 형식이 아닙니다.")
	}
	if string(req.Data) == "null" {
		req.Data = nil
	}
	if err := h.validator().Struct(&req); err != nil {
		return newBadRequestError(formatValidationError(err))
	}

	p := h.pipeline
	if req.SourceURL != "" {
		p.Render.SourceURL = req.SourceURL
	}

	var result watch.Result
	if strings.TrimSpace(req.HTML) != "" {
		doc, err := fetcher.ReadDocument(strings.NewReader(req.HTML), req.ContentType)
		if err != nil {
			return newBadRequestError("HTML 문서를 해석할 수 없습니다.")
		}
		result = p.FromDocument(doc)
	} else {
		if len(req.Data) == 0 {
			return newBadRequestError(errMsgEmptyPreview)
		}
		root, ok := extract.ParsePayload(string(req.Data), "")
		if !ok {
			return newBadRequestError("data가 올바른 JSON 값이 아닙니다.")
		}
		result = p.FromData(root)
	}

	applog.WithComponentAndFields(componentHandler, applog.Fields{
		"offers":     len(result.Offers),
		"source":     result.Source,
		"notify":     result.Decision.Notify,
		"blocks":     len(result.Blocks),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}).Info("미리보기 요청 처리 완료")

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) validator() *validator.Validate {
	h.validateOnce.Do(func() {
		h.validate = validator.New(validator.WithRequiredStructEnabled())
		h.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return h.validate
}

// formatValidationError 첫 번째 검증 에러를 사용자에게 보여줄 메시지로 바꿉니다.
func formatValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errMsgBadRequest
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required_without":
		return errMsgEmptyPreview
	case "http_url":
		return fmt.Sprintf("%s는 http(s) URL이어야 합니다.", fe.Field())
	default:
		return fmt.Sprintf("%s 값이 올바르지 않습니다.", fe.Field())
	}
}
