package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bazarchi/backend/internal/logging"
	"github.com/bazarchi/backend/internal/mykafka"
)

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"message": msg})
}

func serverError(c echo.Context, msg string, err error) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"message": msg,
		"error":   err.Error(),
	})
}

// publish sends a domain event best-effort: failures are logged and never
// fail the request.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}
