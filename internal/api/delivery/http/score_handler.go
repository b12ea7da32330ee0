package http

import (
	"net/http"
	"strconv"

	"newspulse/internal/api/dto"
	"newspulse/internal/api/service"
	"newspulse/pkg/logger"
	"newspulse/pkg/utils"

	"github.com/labstack/echo/v4"
)

// ScoreHandler handles HTTP requests for company scores.
type ScoreHandler struct {
	scoreService service.ScoreService
	logger       *logger.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scoreService service.ScoreService, logger *logger.Logger) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService, logger: logger}
}

// RegisterRoutes registers the score routes to the Echo group.
func (h *ScoreHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/ranking/:date", h.GetRanking)
	g.GET("/company/:ticker", h.GetCompanyHistory)
	g.POST("/calculate/:date", h.Calculate)
}

// GetRanking godoc
// @Summary Get the company ranking for a date
// @Description Ranked per-company sentiment scores for one calendar date
// @Tags scores
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param limit query int false "Maximum rows" default(100)
// @Param sentiment query string false "Filter: positive or negative"
// @Success 200 {array} dto.RankingItem
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores/ranking/{date} [get]
func (h *ScoreHandler) GetRanking(c echo.Context) error {
	date, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid date format, use YYYY-MM-DD"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
	}

	query := dto.RankingQuery{
		Date:      date,
		Limit:     limit,
		Sentiment: c.QueryParam("sentiment"),
	}
	if err := query.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	items, err := h.scoreService.GetRanking(c.Request().Context(), query)
	if err != nil {
		h.logger.Error("Failed to get ranking", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get ranking"})
	}

	return c.JSON(http.StatusOK, items)
}

// GetCompanyHistory godoc
// @Summary Get a company's score history
// @Tags scores
// @Produce json
// @Param ticker path string true "Company ticker"
// @Param days query int false "History window in days" default(30)
// @Success 200 {array} dto.ScoreHistoryItem
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores/company/{ticker} [get]
func (h *ScoreHandler) GetCompanyHistory(c echo.Context) error {
	ticker := c.Param("ticker")

	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid days"})
		}
		days = parsed
	}

	items, err := h.scoreService.GetCompanyHistory(c.Request().Context(), ticker, days)
	if err != nil {
		h.logger.Error("Failed to get company history",
			logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get company history"})
	}

	return c.JSON(http.StatusOK, items)
}

// Calculate godoc
// @Summary Recompute scores for a date
// @Description Re-runs aggregation for the date; idempotent, overwrites in place
// @Tags scores
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.CalculateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores/calculate/{date} [post]
func (h *ScoreHandler) Calculate(c echo.Context) error {
	date, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid date format, use YYYY-MM-DD"})
	}

	resp, err := h.scoreService.Calculate(c.Request().Context(), date)
	if err != nil {
		h.logger.Error("Failed to recompute scores", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to recompute scores"})
	}

	return c.JSON(http.StatusOK, resp)
}
