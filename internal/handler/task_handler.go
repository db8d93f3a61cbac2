package handler

import (
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/service"
	"crm-service/pkg/logger"
	"crm-service/pkg/pagination"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TaskHandler serves tasks, task comments and task types
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c echo.Context) error {
	p, err := pageParams(c, pagination.DefaultLimit)
	if err != nil {
		return err
	}

	filter := service.TaskFilter{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssignedTo: c.QueryParam("assigned_to"),
		LeadID:     c.QueryParam("lead_id"),
		PipelineID: c.QueryParam("pipeline_id"),
		TaskTypeID: c.QueryParam("task_type_id"),
	}

	page, err := h.tasks.List(c.Request().Context(), middleware.TenantID(c), filter, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.tasks.Get(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c echo.Context) error {
	var req service.TaskInput
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), middleware.TenantID(c), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Info("Task created", zap.String("task_id", task.ID))
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c echo.Context) error {
	var req service.TaskUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.tasks.Update(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.tasks.Delete(c.Request().Context(), middleware.TenantID(c), id); err != nil {
		return err
	}

	logger.FromContext(c).Info("Task deleted", zap.String("task_id", id))
	return c.JSON(http.StatusOK, message("Tarefa deletada com sucesso"))
}

func (h *TaskHandler) Complete(c echo.Context) error {
	task, err := h.tasks.Complete(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Reopen(c echo.Context) error {
	task, err := h.tasks.Reopen(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Comments(c echo.Context) error {
	comments, err := h.tasks.ListComments(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *TaskHandler) CreateComment(c echo.Context) error {
	var req service.CommentInput
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.tasks.CreateComment(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *TaskHandler) Types(c echo.Context) error {
	types, err := h.tasks.ListTaskTypes(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}
