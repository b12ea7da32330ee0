package http

import (
	"net/http"
	"strconv"

	"newspulse/internal/api/dto"
	"newspulse/internal/api/service"
	"newspulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SentimentHandler handles HTTP requests for article sentiment history.
type SentimentHandler struct {
	sentimentService service.SentimentService
	logger           *logger.Logger
}

// NewSentimentHandler creates a new SentimentHandler.
func NewSentimentHandler(sentimentService service.SentimentService, logger *logger.Logger) *SentimentHandler {
	return &SentimentHandler{sentimentService: sentimentService, logger: logger}
}

// RegisterRoutes registers the sentiment routes to the Echo group.
func (h *SentimentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:ticker", h.GetHistory)
}

// GetHistory godoc
// @Summary Get a company's article sentiment history
// @Description Article-level sentiment rows for the per-ticker history chart
// @Tags sentiments
// @Produce json
// @Param ticker path string true "Company ticker"
// @Param days query int false "History window in days" default(30)
// @Success 200 {array} dto.SentimentHistoryItem
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sentiments/{ticker} [get]
func (h *SentimentHandler) GetHistory(c echo.Context) error {
	ticker := c.Param("ticker")

	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid days"})
		}
		days = parsed
	}

	items, err := h.sentimentService.GetHistory(c.Request().Context(), ticker, days)
	if err != nil {
		h.logger.Error("Failed to get sentiment history",
			logger.ErrorField(err), logger.StringField("ticker", ticker))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get sentiment history"})
	}

	return c.JSON(http.StatusOK, items)
}
