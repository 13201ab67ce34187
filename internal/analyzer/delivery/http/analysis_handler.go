package http

import (
	"errors"
	"net/http"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/registry"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AnalysisHandler handles HTTP requests for analysis jobs.
type AnalysisHandler struct {
	orchestrator *service.Orchestrator
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(orchestrator *service.Orchestrator, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyze", h.Analyze)
	g.POST("/analyze/batch", h.AnalyzeBatch)
	g.GET("/tasks", h.GetTasks)
	g.GET("/tasks/:code", h.GetTask)
	g.GET("/status", h.GetStatus)
	g.GET("/reports/:code", h.GetLatestReport)
}

// Analyze godoc
// @Summary Start a streaming analysis
// @Description Start an analysis job for one stock code; progress streams over SSE or WebSocket
// @Tags analysis
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalyzeRequest   true    "Stock to analyze"
// @Success 202 {object} dto.AnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	subject, err := h.orchestrator.Analyze(req)
	switch {
	case errors.Is(err, dto.ErrInvalidSubject):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, registry.ErrBusy):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case err != nil:
		h.logger.Error("Failed to admit analysis job", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.AnalyzeResponse{
		Status:    "accepted",
		StockCode: subject.Symbol,
		Message:   "Analysis started",
	})
}

// AnalyzeBatch godoc
// @Summary Start a batch analysis
// @Description Start analysis jobs for up to the configured maximum of stock codes
// @Tags analysis
// @Accept  json
// @Produce  json
// @Param   request  body    dto.BatchAnalyzeRequest   true    "Stocks to analyze"
// @Success 202 {object} dto.AnalyzeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /analyze/batch [post]
func (h *AnalysisHandler) AnalyzeBatch(c echo.Context) error {
	var req dto.BatchAnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	err := h.orchestrator.AnalyzeBatch(req)
	switch {
	case errors.Is(err, service.ErrBatchTooLarge), errors.Is(err, dto.ErrInvalidSubject):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case err != nil:
		h.logger.Error("Failed to admit batch", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.AnalyzeResponse{
		Status:  "accepted",
		Message: "Batch analysis started",
	})
}

// GetTasks godoc
// @Summary List in-flight analysis tasks
// @Tags analysis
// @Produce  json
// @Success 200 {array} dto.TaskStatus
// @Router /tasks [get]
func (h *AnalysisHandler) GetTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orchestrator.Tasks())
}

// GetTask godoc
// @Summary Get the in-flight task for a stock code
// @Tags analysis
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 200 {object} dto.TaskStatus
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{code} [get]
func (h *AnalysisHandler) GetTask(c echo.Context) error {
	task, ok, err := h.orchestrator.Task(c.Param("code"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no running task for this code"})
	}
	return c.JSON(http.StatusOK, task)
}

// GetStatus godoc
// @Summary Get system status
// @Tags analysis
// @Produce  json
// @Success 200 {object} dto.SystemInfo
// @Router /status [get]
func (h *AnalysisHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orchestrator.SystemInfo())
}

// GetLatestReport godoc
// @Summary Get the latest persisted report for a stock code
// @Tags analysis
// @Produce  json
// @Param   code  path    string true    "Stock code"
// @Success 200 {object} entity.AnalysisReport
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /reports/{code} [get]
func (h *AnalysisHandler) GetLatestReport(c echo.Context) error {
	report, err := h.orchestrator.LatestReport(c.Request().Context(), c.Param("code"))
	switch {
	case errors.Is(err, dto.ErrInvalidSubject):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no report found"})
	case err != nil:
		h.logger.Error("Failed to load report", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}
