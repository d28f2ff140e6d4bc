package http

import (
	"net/http"

	"arthalend-backend/internal/usecase/defaulting"

	"github.com/labstack/echo/v4"
)

type DefaultingHandler struct{ uc *defaulting.Usecase }

func NewDefaultingHandler(uc *defaulting.Usecase) *DefaultingHandler {
	return &DefaultingHandler{uc: uc}
}

// Check runs the overdue sweep on demand. The sweep is idempotent, so an
// extra run beyond the background ticker is harmless.
func (h *DefaultingHandler) Check(c echo.Context) error {
	res, err := h.uc.Sweep(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
