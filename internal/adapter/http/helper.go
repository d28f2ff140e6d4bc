package http

import (
	"strings"

	"arthalend-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

// userPhone reads the authenticated phone set by the auth middleware.
// Empty means the route was mounted without RequireAuth.
func userPhone(c echo.Context) string {
	phone, _ := c.Get(middleware.UserPhoneKey).(string)
	return phone
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
