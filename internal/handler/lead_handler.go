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

// LeadHandler serves leads, their history and custom values
type LeadHandler struct {
	leads        *service.LeadService
	customFields *service.CustomFieldService
}

func NewLeadHandler(leads *service.LeadService, customFields *service.CustomFieldService) *LeadHandler {
	return &LeadHandler{leads: leads, customFields: customFields}
}

type setCustomValuesRequest struct {
	Values []service.CustomValueInput `json:"values" validate:"required,dive"`
}

func (h *LeadHandler) List(c echo.Context) error {
	p, err := pageParams(c, pagination.DefaultLimit)
	if err != nil {
		return err
	}
	createdFrom, err := queryTime(c, "created_from")
	if err != nil {
		return err
	}
	createdTo, err := queryTime(c, "created_to")
	if err != nil {
		return err
	}

	filter := service.LeadFilter{
		Search:          c.QueryParam("search"),
		Status:          c.QueryParam("status"),
		PipelineID:      c.QueryParam("pipeline_id"),
		StageID:         c.QueryParam("stage_id"),
		ResponsibleUUID: c.QueryParam("responsible_uuid"),
		Origin:          c.QueryParam("origin"),
		Tags:            queryList(c, "tags"),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	}

	page, err := h.leads.List(c.Request().Context(), middleware.TenantID(c), filter, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *LeadHandler) Tags(c echo.Context) error {
	tags, err := h.leads.Tags(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *LeadHandler) Origins(c echo.Context) error {
	origins, err := h.leads.Origins(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, origins)
}

func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.leads.Get(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Create(c echo.Context) error {
	var req service.LeadInput
	if err := bind(c, &req); err != nil {
		return err
	}

	lead, err := h.leads.Create(c.Request().Context(), middleware.TenantID(c), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Info("Lead created",
		zap.String("lead_id", lead.ID),
		zap.String("pipeline_id", lead.PipelineID))
	return c.JSON(http.StatusCreated, lead)
}

func (h *LeadHandler) Update(c echo.Context) error {
	var req service.LeadUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	lead, err := h.leads.Update(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.leads.Delete(c.Request().Context(), middleware.TenantID(c), id); err != nil {
		return err
	}

	logger.FromContext(c).Info("Lead deleted", zap.String("lead_id", id))
	return c.JSON(http.StatusOK, message("Lead deletado com sucesso"))
}

func (h *LeadHandler) MoveStage(c echo.Context) error {
	var req service.MoveStageInput
	if err := bind(c, &req); err != nil {
		return err
	}

	lead, err := h.leads.MoveStage(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Info("Lead moved",
		zap.String("lead_id", lead.ID),
		zap.String("stage_id", lead.StageID))
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) MarkLost(c echo.Context) error {
	var req service.MarkLostInput
	if err := bind(c, &req); err != nil {
		return err
	}

	lead, err := h.leads.MarkLost(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) MarkSold(c echo.Context) error {
	var req service.MarkSoldInput
	if err := bind(c, &req); err != nil {
		return err
	}

	lead, err := h.leads.MarkSold(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Reactivate(c echo.Context) error {
	lead, err := h.leads.Reactivate(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) History(c echo.Context) error {
	history, err := h.leads.History(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (h *LeadHandler) CustomValues(c echo.Context) error {
	values, err := h.customFields.GetValues(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, values)
}

func (h *LeadHandler) SetCustomValues(c echo.Context) error {
	var req setCustomValuesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	values, err := h.customFields.SetValues(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req.Values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, values)
}

// CustomFields lists field definitions, global ones plus those of pipeline_id
func (h *LeadHandler) CustomFields(c echo.Context) error {
	fields, err := h.customFields.ListFields(c.Request().Context(), middleware.TenantID(c), c.QueryParam("pipeline_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fields)
}
