package http

import (
	"net/http"
	"strconv"

	"investment-advisor/internal/dto"
	"investment-advisor/internal/model"
	"investment-advisor/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupConsultations(base *echo.Group) {
	v1 := base.Group("/v1/consultations")
	{
		v1.POST("", h.CreateConsultation)
		v1.GET("", h.ListConsultations)
		v1.GET("/:id", h.GetConsultation)
	}
}

// CreateConsultation runs the full advisory pipeline synchronously and
// returns the aggregate result, including partial artifacts on failure.
func (h *HttpAPIHandler) CreateConsultation(c echo.Context) error {
	var profile dto.UserProfile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(profile); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result := h.service.AdvisorService.Consult(c.Request().Context(), profile)

	code := statusCode(result.Status)
	return c.JSON(code, dto.NewBaseResponse(code, result.Message, result))
}

func (h *HttpAPIHandler) GetConsultation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid consultation id"))
	}

	consultation, err := h.service.AdvisorService.GetConsultation(c.Request().Context(), uint(id))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	if consultation == nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "consultation not found", nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", consultation))
}

func (h *HttpAPIHandler) ListConsultations(c echo.Context) error {
	param := model.GetConsultationParam{}
	if status := c.QueryParam("status"); status != "" {
		param.Status = utils.ToPointer(status)
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid limit"))
		}
		param.Limit = utils.ToPointer(limit)
	}

	consultations, err := h.service.AdvisorService.GetConsultations(c.Request().Context(), param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", consultations))
}

// statusCode maps a pipeline outcome to an HTTP status. A rejected
// analysis is a domain outcome, not a server fault, so it maps to 422.
func statusCode(status dto.ConsultationStatus) int {
	switch status {
	case dto.StatusSuccess:
		return http.StatusOK
	case dto.StatusValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
