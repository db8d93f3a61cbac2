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

// ChatHandler serves WhatsApp instances, conversations and messages
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Instances(c echo.Context) error {
	instances, err := h.chat.ListInstances(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, instances)
}

func (h *ChatHandler) List(c echo.Context) error {
	p, err := pageParams(c, pagination.DefaultLimit)
	if err != nil {
		return err
	}

	filter := service.ConversationFilter{
		Status:         c.QueryParam("status"),
		InstanceID:     c.QueryParam("instance_id"),
		LeadID:         c.QueryParam("lead_id"),
		AssignedUserID: c.QueryParam("assigned_user_id"),
		Fone:           c.QueryParam("fone"),
	}

	page, err := h.chat.ListConversations(c.Request().Context(), middleware.TenantID(c), filter, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ChatHandler) Get(c echo.Context) error {
	conversation, err := h.chat.Get(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) Create(c echo.Context) error {
	var req service.ConversationInput
	if err := bind(c, &req); err != nil {
		return err
	}

	conversation, err := h.chat.Create(c.Request().Context(), middleware.TenantID(c), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Info("Conversation created", zap.String("conversation_id", conversation.ID))
	return c.JSON(http.StatusCreated, conversation)
}

func (h *ChatHandler) Update(c echo.Context) error {
	var req service.ConversationUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	conversation, err := h.chat.Update(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) Close(c echo.Context) error {
	conversation, err := h.chat.Close(c.Request().Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversation)
}

func (h *ChatHandler) Messages(c echo.Context) error {
	p, err := pageParams(c, service.DefaultMessageLimit)
	if err != nil {
		return err
	}

	page, err := h.chat.ListMessages(c.Request().Context(), middleware.TenantID(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ChatHandler) CreateMessage(c echo.Context) error {
	var req service.MessageInput
	if err := bind(c, &req); err != nil {
		return err
	}

	msg, err := h.chat.CreateMessage(c.Request().Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		return err
	}

	logger.FromContext(c).Debug("Message stored",
		zap.String("conversation_id", msg.ConversationID),
		zap.String("direction", msg.Direction))
	return c.JSON(http.StatusCreated, msg)
}
