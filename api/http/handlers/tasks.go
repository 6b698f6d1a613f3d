package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskboard/api/http/presenter"
	"github.com/artem13815/taskboard/api/http/schema"
	"github.com/artem13815/taskboard/pkg/security/jwt"
	"github.com/artem13815/taskboard/pkg/task"
)

type TaskHandler struct {
	uc      task.UseCase
	schemas *schema.Validator
	logger  *log.Logger
}

func NewTaskHandler(uc task.UseCase, schemas *schema.Validator, logger *log.Logger) *TaskHandler {
	return &TaskHandler{uc: uc, schemas: schemas, logger: logger}
}

type createTaskRequest struct {
	Text string `json:"text"`
}

type updateTaskRequest struct {
	Completed *bool   `json:"completed"`
	Text      *string `json:"text"`
}

// @Summary  List tasks
// @Tags     tasks
// @Produce  json
// @Security BearerAuth
// @Success  200 {array}  task.Task
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	identity, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "access denied")
	}
	tasks, err := h.uc.List(c.Context(), identity.ID)
	if err != nil {
		return fail(c, h.logger, "list tasks", err)
	}
	return presenter.JSON(c, http.StatusOK, tasks)
}

// @Summary  Create task
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Param    input body createTaskRequest true "task text"
// @Security BearerAuth
// @Success  200 {object} task.Task
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	identity, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "access denied")
	}
	var req createTaskRequest
	if err := h.schemas.Decode(schema.TaskCreate, c.Body(), &req); err != nil {
		return fail(c, h.logger, "create task", err)
	}
	t, err := h.uc.Create(c.Context(), identity.ID, req.Text)
	if err != nil {
		return fail(c, h.logger, "create task", err)
	}
	return presenter.JSON(c, http.StatusOK, t)
}

// @Summary     Update task
// @Description Changes only the fields present in the body.
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       id    path string            true "task id"
// @Param       input body updateTaskRequest true "fields to change"
// @Security    BearerAuth
// @Success     200 {object} task.Task
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     401 {object} presenter.ErrorResponse
// @Failure     403 {object} presenter.ErrorResponse
// @Failure     404 {object} presenter.ErrorResponse
// @Router      /tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	identity, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "access denied")
	}
	var req updateTaskRequest
	if err := h.schemas.Decode(schema.TaskUpdate, c.Body(), &req); err != nil {
		return fail(c, h.logger, "update task", err)
	}
	t, err := h.uc.Update(c.Context(), c.Params("id"), identity.ID, task.Patch{
		Completed: req.Completed,
		Text:      req.Text,
	})
	if err != nil {
		return fail(c, h.logger, "update task", err)
	}
	return presenter.JSON(c, http.StatusOK, t)
}

// @Summary  Delete task
// @Tags     tasks
// @Produce  json
// @Param    id path string true "task id"
// @Security BearerAuth
// @Success  200 {object} presenter.SuccessResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	identity, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "access denied")
	}
	if err := h.uc.Delete(c.Context(), c.Params("id"), identity.ID); err != nil {
		return fail(c, h.logger, "delete task", err)
	}
	return presenter.Success(c, "")
}
