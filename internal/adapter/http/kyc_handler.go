package http

import (
	"net/http"

	"arthalend-backend/internal/usecase/kyc"

	"github.com/labstack/echo/v4"
)

type KYCHandler struct{ uc *kyc.Usecase }

func NewKYCHandler(uc *kyc.Usecase) *KYCHandler { return &KYCHandler{uc: uc} }

func (h *KYCHandler) SubmitBasicInfo(c echo.Context) error {
	var req kyc.BasicInfoInput
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
	rec, err := h.uc.SubmitBasicInfo(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *KYCHandler) SubmitIDDocuments(c echo.Context) error {
	var req kyc.IDDocumentsInput
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
	rec, err := h.uc.SubmitIDDocuments(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *KYCHandler) Finalize(c echo.Context) error {
	var req kyc.FinalizeInput
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
	rec, err := h.uc.Finalize(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *KYCHandler) Status(c echo.Context) error {
	rec, err := h.uc.Status(c.Request().Context(), userPhone(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
