package http

import (
	"net/http"

	"arthalend-backend/internal/usecase/publicledger"

	"github.com/labstack/echo/v4"
)

// LedgerHandler serves read-only views of the proof-of-record chain.
type LedgerHandler struct{ uc *publicledger.Usecase }

func NewLedgerHandler(uc *publicledger.Usecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func (h *LedgerHandler) Streams(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"streams": h.uc.Streams()})
}

func (h *LedgerHandler) Stream(c echo.Context) error {
	name := c.Param("stream")
	items, err := h.uc.Stream(c.Request().Context(), name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"stream": name,
		"items":  items,
	})
}

func (h *LedgerHandler) LoanTrail(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	trail, err := h.uc.LoanTrail(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id": loanID,
		"streams": trail,
	})
}
