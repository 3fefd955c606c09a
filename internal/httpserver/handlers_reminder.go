package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pathakanu/mindwell/internal/apperrors"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/pathakanu/mindwell/internal/reminder"
)

func (s *Server) registerReminderRoutes(g *echo.Group) {
	g.GET("/reminders", s.handleListReminders)
	g.POST("/reminders", s.handleCreateReminder)
	g.DELETE("/reminders/:id", s.handleDeleteReminder)
}

func (s *Server) handleListReminders(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	reminders, err := s.reminders.List(c.Request().Context(), user.ID)
	if err != nil {
		return toAppError(err, "failed to load reminders")
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	return sendJSON(c, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req reminder.CreateInput
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	created, err := s.reminders.Create(c.Request().Context(), user.ID, user.Email, req)
	if err != nil {
		return toAppError(err, "failed to create reminder")
	}
	return sendJSON(c, http.StatusCreated, created)
}

func (s *Server) handleDeleteReminder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return apperrors.ValidationError("invalid UUID format").WithField("id", raw)
	}

	if err := s.reminders.Delete(c.Request().Context(), user.ID, id); err != nil {
		return toAppError(err, "failed to delete reminder").WithField("reminder_id", id.String())
	}
	return c.NoContent(http.StatusNoContent)
}
