package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskboard/api/http/presenter"
	"github.com/artem13815/taskboard/pkg/apperr"
)

// fail renders err with the status of its kind. Server-side failures are
// logged and their details kept out of the response.
func fail(c *fiber.Ctx, logger *log.Logger, op string, err error) error {
	status := presenter.StatusOf(err)
	if status < http.StatusInternalServerError {
		return presenter.Error(c, status, apperr.Message(err))
	}
	if errors.Is(err, apperr.ErrStorage) {
		logger.Error("durability may be compromised", "op", op, "err", err)
		return presenter.Error(c, status, "storage unavailable")
	}
	logger.Error("request failed", "op", op, "err", err)
	return presenter.Error(c, status, "failed to "+op)
}
