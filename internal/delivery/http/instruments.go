package http

import (
	"net/http"

	"investment-advisor/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupInstruments(base *echo.Group) {
	v1 := base.Group("/v1/instruments")
	{
		v1.GET("", h.ListInstruments)
		v1.GET("/indicators", h.GetMarketIndicators)
	}
}

func (h *HttpAPIHandler) ListInstruments(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", h.service.CatalogService.List()))
}

func (h *HttpAPIHandler) GetMarketIndicators(c echo.Context) error {
	indicators, err := h.service.CatalogService.MarketIndicators(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", indicators))
}
