package collector_querying

import (
	"errors"
	"net/http"

	collector_core "nesttelemetry/internal/features/collector/core"

	"github.com/gin-gonic/gin"
)

type QueryingController struct {
	queryingService *QueryingService
}

func (c *QueryingController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/logs/:date", c.GetLogs)
	router.GET("/metrics/:date", c.GetMetrics)
}

// GetLogs
// @Summary Get stored logs for a day
// @Tags telemetry
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD format"
// @Success 200 {object} GetLogsResponseDTO
// @Failure 400 {object} map[string]string "Malformed date"
// @Failure 500 {object} map[string]string "Storage failure"
// @Router /logs/{date} [get]
func (c *QueryingController) GetLogs(ctx *gin.Context) {
	logs, err := c.queryingService.GetLogs(ctx.Request.Context(), ctx.Param("date"))
	if err != nil {
		c.handleError(ctx, err, "Failed to read logs")
		return
	}

	ctx.JSON(http.StatusOK, GetLogsResponseDTO{Logs: logs})
}

// GetMetrics
// @Summary Get stored metric batches for a day
// @Tags telemetry
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD format"
// @Success 200 {object} GetMetricsResponseDTO
// @Failure 400 {object} map[string]string "Malformed date"
// @Failure 500 {object} map[string]string "Storage failure"
// @Router /metrics/{date} [get]
func (c *QueryingController) GetMetrics(ctx *gin.Context) {
	batches, err := c.queryingService.GetMetrics(ctx.Request.Context(), ctx.Param("date"))
	if err != nil {
		c.handleError(ctx, err, "Failed to read metrics")
		return
	}

	ctx.JSON(http.StatusOK, GetMetricsResponseDTO{Metrics: batches})
}

func (c *QueryingController) handleError(ctx *gin.Context, err error, fallbackMessage string) {
	var validationErr *collector_core.ValidationError
	if errors.As(err, &validationErr) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"code":  validationErr.Code,
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMessage})
}
