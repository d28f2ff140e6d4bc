package http

import (
	"net/http"

	"arthalend-backend/internal/usecase/credit"

	"github.com/labstack/echo/v4"
)

type CreditHandler struct{ uc *credit.Usecase }

func NewCreditHandler(uc *credit.Usecase) *CreditHandler { return &CreditHandler{uc: uc} }

func (h *CreditHandler) SubmitFinancials(c echo.Context) error {
	var req credit.FinancialsInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	req.UserID = userPhone(c)
	stats, err := h.uc.SubmitFinancials(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *CreditHandler) Recompute(c echo.Context) error {
	view, err := h.uc.Recompute(c.Request().Context(), userPhone(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CreditHandler) GetScore(c echo.Context) error {
	view, err := h.uc.GetScore(c.Request().Context(), userPhone(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
