package handler

import (
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/service"

	"github.com/labstack/echo/v4"
)

// PipelineHandler serves the read-only pipeline endpoints
type PipelineHandler struct {
	pipelines *service.PipelineService
}

func NewPipelineHandler(pipelines *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelines: pipelines}
}

func (h *PipelineHandler) List(c echo.Context) error {
	includeStages, err := queryBool(c, "include_stages")
	if err != nil {
		return err
	}

	pipelines, err := h.pipelines.List(c.Request().Context(), middleware.TenantID(c), includeStages)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pipelines)
}

func (h *PipelineHandler) Get(c echo.Context) error {
	pipeline, err := h.pipelines.Get(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pipeline)
}

func (h *PipelineHandler) Stages(c echo.Context) error {
	stages, err := h.pipelines.ListStages(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stages)
}
