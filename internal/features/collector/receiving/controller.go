package collector_receiving

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	collector_core "nesttelemetry/internal/features/collector/core"

	"github.com/gin-gonic/gin"
)

type ReceivingController struct {
	receivingService *ReceivingService
}

func (c *ReceivingController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/logs", c.SubmitLogs)
	router.POST("/metrics", c.SubmitMetrics)
}

// SubmitLogs
// @Summary Submit a batch of logs
// @Description Accepts the batch only if every entry has a valid level (DEBUG/INFO/WARN/ERROR) and a timestamp. Bodies may be gzip-encoded.
// @Tags telemetry
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token (required when the collector has a JWT secret)"
// @Param request body SubmitLogsRequestDTO true "Logs to store"
// @Success 200 {object} SubmitResponseDTO
// @Failure 400 {object} map[string]string "Invalid request format or log entry"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 413 {object} map[string]string "Batch too large"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 500 {object} map[string]string "Storage failure"
// @Router /logs [post]
func (c *ReceivingController) SubmitLogs(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxBatchSizeBytes)

	var request SubmitLogsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.handleBindError(ctx, err)
		return
	}

	response, err := c.receivingService.SubmitLogs(ctx.Request.Context(), &request, extractClientIP(ctx))
	if err != nil {
		c.handleError(ctx, err, "Failed to process logs")
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// SubmitMetrics
// @Summary Submit performance metrics and user actions
// @Description Stores the metrics and user actions as one batch stamped with the receive time. Either list may be empty.
// @Tags telemetry
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token (required when the collector has a JWT secret)"
// @Param request body SubmitMetricsRequestDTO true "Metrics and user actions to store"
// @Success 200 {object} SubmitResponseDTO
// @Failure 400 {object} map[string]string "Invalid request format or metric"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 413 {object} map[string]string "Batch too large"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Failure 500 {object} map[string]string "Storage failure"
// @Router /metrics [post]
func (c *ReceivingController) SubmitMetrics(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxBatchSizeBytes)

	var request SubmitMetricsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.handleBindError(ctx, err)
		return
	}

	response, err := c.receivingService.SubmitMetrics(ctx.Request.Context(), &request, extractClientIP(ctx))
	if err != nil {
		c.handleError(ctx, err, "Failed to process metrics")
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *ReceivingController) handleBindError(ctx *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "request body too large",
			"code":  collector_core.ErrorBatchTooLarge,
		})
		return
	}

	ctx.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request format",
		"code":  collector_core.ErrorInvalidRequestBody,
	})
}

func (c *ReceivingController) handleError(ctx *gin.Context, err error, fallbackMessage string) {
	var validationErr *collector_core.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Code == collector_core.ErrorRateLimitExceeded {
			ctx.Header("Retry-After", strconv.Itoa(max(validationErr.RetryAfterSec, 1)))
		}

		body := gin.H{
			"error": validationErr.Message,
			"code":  validationErr.Code,
		}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}

		ctx.JSON(getStatusCodeForValidationError(validationErr.Code), body)
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMessage})
}

func getStatusCodeForValidationError(errorCode string) int {
	switch errorCode {
	case collector_core.ErrorRateLimitExceeded:
		return http.StatusTooManyRequests
	case collector_core.ErrorBatchTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

func extractClientIP(ctx *gin.Context) string {
	// First entry of X-Forwarded-For wins for proxied requests
	forwarded := ctx.GetHeader("X-Forwarded-For")
	if forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	realIP := ctx.GetHeader("X-Real-IP")
	if realIP != "" {
		return strings.TrimSpace(realIP)
	}

	return ctx.ClientIP()
}
