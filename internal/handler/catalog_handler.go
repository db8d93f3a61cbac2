package handler

import (
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/service"

	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the read-only vehicle stock and user directory
type CatalogHandler struct {
	vehicles *service.VehicleService
	users    *service.UserService
}

func NewCatalogHandler(vehicles *service.VehicleService, users *service.UserService) *CatalogHandler {
	return &CatalogHandler{vehicles: vehicles, users: users}
}

func (h *CatalogHandler) Vehicles(c echo.Context) error {
	vehicles, err := h.vehicles.List(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicles)
}

func (h *CatalogHandler) Users(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
