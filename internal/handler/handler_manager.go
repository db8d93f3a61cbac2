package handler

import "crm-service/internal/service"

type HandlerManager struct {
	Health    *HealthHandler
	Leads     *LeadHandler
	Pipelines *PipelineHandler
	Tasks     *TaskHandler
	Bookings  *BookingHandler
	Chat      *ChatHandler
	Catalog   *CatalogHandler
}

func NewHandlerManager(sm *service.ServiceManager, version string) *HandlerManager {
	return &HandlerManager{
		Health:    NewHealthHandler(version, sm),
		Leads:     NewLeadHandler(sm.Leads, sm.CustomFields),
		Pipelines: NewPipelineHandler(sm.Pipelines),
		Tasks:     NewTaskHandler(sm.Tasks),
		Bookings:  NewBookingHandler(sm.Bookings),
		Chat:      NewChatHandler(sm.Chat),
		Catalog:   NewCatalogHandler(sm.Vehicles, sm.Users),
	}
}
