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

// BookingHandler serves calendars and bookings
type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Calendars(c echo.Context) error {
	calendars, err := h.bookings.ListCalendars(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendars)
}

func (h *BookingHandler) Calendar(c echo.Context) error {
	calendar, err := h.bookings.GetCalendar(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendar)
}

func (h *BookingHandler) Availability(c echo.Context) error {
	windows, err := h.bookings.ListAvailability(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, windows)
}

func (h *BookingHandler) Types(c echo.Context) error {
	types, err := h.bookings.ListBookingTypes(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}

func (h *BookingHandler) Blocks(c echo.Context) error {
	dateFrom, err := queryTime(c, "date_from")
	if err != nil {
		return err
	}

	blocks, err := h.bookings.ListBlocks(c.Request().Context(), middleware.TenantID(c), c.Param("id"), dateFrom)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, blocks)
}

func (h *BookingHandler) List(c echo.Context) error {
	p, err := pageParams(c, pagination.DefaultLimit)
	if err != nil {
		return err
	}
	dateFrom, err := queryTime(c, "date_from")
	if err != nil {
		return err
	}
	dateTo, err := queryTime(c, "date_to")
	if err != nil {
		return err
	}

	filter := service.BookingFilter{
		CalendarID: c.QueryParam("calendar_id"),
		Status:     c.QueryParam("status"),
		AssignedTo: c.QueryParam("assigned_to"),
		LeadID:     c.QueryParam("lead_id"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	}

	page, err := h.bookings.List(c.Request().Context(), middleware.TenantID(c), filter, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) Get(c echo.Context) error {
	booking, err := h.bookings.Get(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req service.BookingInput
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Create(c.Request().Context(), middleware.TenantID(c), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("calendar_id", booking.CalendarID))
	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) Update(c echo.Context) error {
	var req service.BookingUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Update(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	booking, err := h.bookings.Cancel(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Confirm(c echo.Context) error {
	booking, err := h.bookings.Confirm(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.bookings.Delete(c.Request().Context(), middleware.TenantID(c), id); err != nil {
		return err
	}

	logger.FromContext(c).Info("Booking deleted", zap.String("booking_id", id))
	return c.JSON(http.StatusOK, message("Agendamento deletado com sucesso"))
}
