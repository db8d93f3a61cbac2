package service

import (
	"context"
	"fmt"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/pagination"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultMessageLimit is the page size of message listings
const DefaultMessageLimit = 50

// ConversationFilter narrows a conversation listing. Empty fields mean no filter.
type ConversationFilter struct {
	Status         string
	InstanceID     string
	LeadID         string
	AssignedUserID string
	Fone           string
}

// ConversationInput is the payload of a conversation creation
type ConversationInput struct {
	LeadID         *string `json:"lead_id"`
	InstanceID     *string `json:"instance_id"`
	Fone           *string `json:"fone" validate:"omitnil,max=20"`
	NomeInstancia  *string `json:"nome_instancia"`
	AssignedUserID *string `json:"assigned_user_id"`
	CodLid         *string `json:"cod_lid"`
	Status         *string `json:"status" validate:"omitnil,oneof=active closed archived"`
}

// ConversationUpdate is a partial conversation update; nil fields are left untouched
type ConversationUpdate struct {
	LeadID         *string `json:"lead_id"`
	AssignedUserID *string `json:"assigned_user_id"`
	Status         *string `json:"status" validate:"omitnil,oneof=active closed archived"`
	CodLid         *string `json:"cod_lid"`
}

// MessageInput records a message in a conversation
type MessageInput struct {
	InstanceID  *string `json:"instance_id"`
	MessageType *string `json:"message_type"`
	Content     *string `json:"content"`
	MediaURL    *string `json:"media_url"`
	Direction   string  `json:"direction" validate:"required,oneof=inbound outbound"`
	Status      *string `json:"status"`
}

// ChatService manages WhatsApp conversations and their messages
type ChatService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewChatService(db *gorm.DB, log *zap.Logger) *ChatService {
	return &ChatService{db: db, log: log}
}

// ListInstances returns the tenant's WhatsApp instances by name
func (s *ChatService) ListInstances(ctx context.Context, tenantID string) ([]model.WhatsappInstance, error) {
	instances := make([]model.WhatsappInstance, 0)
	if err := s.db.WithContext(ctx).Scopes(byTenant(tenantID)).Order("name").Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("listing whatsapp instances: %w", err)
	}
	return instances, nil
}

func conversationFilters(f ConversationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.InstanceID != "" {
			db = db.Where("instance_id = ?", f.InstanceID)
		}
		if f.LeadID != "" {
			db = db.Where("lead_id = ?", f.LeadID)
		}
		if f.AssignedUserID != "" {
			db = db.Where("assigned_user_id = ?", f.AssignedUserID)
		}
		if f.Fone != "" {
			db = db.Where("fone = ?", f.Fone)
		}
		return db
	}
}

// ListConversations returns one page of conversations, most recent activity first
func (s *ChatService) ListConversations(ctx context.Context, tenantID string, f ConversationFilter, p pagination.Params) (*pagination.Page[model.Conversation], error) {
	defer prometheus.TrackDBOperation("conversation_list")()

	q := s.db.WithContext(ctx).Model(&model.Conversation{}).Scopes(byTenant(tenantID), conversationFilters(f))
	page, err := listPage[model.Conversation](q, p, func(db *gorm.DB) *gorm.DB {
		return db.Order("last_message_at DESC NULLS LAST").Order("id")
	})
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return page, nil
}

// Get returns one conversation
func (s *ChatService) Get(ctx context.Context, tenantID, conversationID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", conversationID, tenantID).
		First(&conversation).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Conversa '%s' não encontrada", conversationID)
		}
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	return &conversation, nil
}

// Create opens a conversation, active unless given otherwise
func (s *ChatService) Create(ctx context.Context, tenantID string, in ConversationInput) (*model.Conversation, error) {
	conversation := model.Conversation{
		TenantID:       tenantID,
		LeadID:         in.LeadID,
		InstanceID:     in.InstanceID,
		Fone:           in.Fone,
		NomeInstancia:  in.NomeInstancia,
		AssignedUserID: in.AssignedUserID,
		CodLid:         in.CodLid,
		Status:         stringOr(in.Status, model.ConversationStatusActive),
	}

	if err := s.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	prometheus.RecordDomainOperation("conversation", "create")

	return s.Get(ctx, tenantID, conversation.ID)
}

// Update applies the non-nil fields of in to a conversation
func (s *ChatService) Update(ctx context.Context, tenantID, conversationID string, in ConversationUpdate) (*model.Conversation, error) {
	if _, err := s.Get(ctx, tenantID, conversationID); err != nil {
		return nil, err
	}

	u := updates{}
	setIf(u, "lead_id", in.LeadID)
	setIf(u, "assigned_user_id", in.AssignedUserID)
	setIf(u, "status", in.Status)
	setIf(u, "cod_lid", in.CodLid)

	if len(u) == 0 {
		return s.Get(ctx, tenantID, conversationID)
	}
	return s.apply(ctx, tenantID, conversationID, "update", u)
}

// Close sets a conversation to closed
func (s *ChatService) Close(ctx context.Context, tenantID, conversationID string) (*model.Conversation, error) {
	if _, err := s.Get(ctx, tenantID, conversationID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, conversationID, "close", updates{"status": model.ConversationStatusClosed})
}

// ListMessages returns one page of a conversation's messages, oldest first
func (s *ChatService) ListMessages(ctx context.Context, tenantID, conversationID string, p pagination.Params) (*pagination.Page[model.Message], error) {
	if _, err := s.Get(ctx, tenantID, conversationID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&model.Message{}).
		Scopes(byTenant(tenantID)).
		Where("conversation_id = ?", conversationID)
	page, err := listPage[model.Message](q, p, func(db *gorm.DB) *gorm.DB {
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
			Order("id")
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return page, nil
}

// CreateMessage stores a message and bumps the conversation's last_message_at.
// message_count is not incremented here.
func (s *ChatService) CreateMessage(ctx context.Context, tenantID, conversationID string, in MessageInput) (*model.Message, error) {
	if _, err := s.Get(ctx, tenantID, conversationID); err != nil {
		return nil, err
	}

	ts := now()
	message := model.Message{
		ConversationID: conversationID,
		InstanceID:     in.InstanceID,
		MessageType:    stringOr(in.MessageType, model.MessageTypeText),
		Content:        in.Content,
		MediaURL:       in.MediaURL,
		Direction:      in.Direction,
		Status:         stringOr(in.Status, model.MessageStatusSent),
		Timestamp:      &ts,
		TenantID:       tenantID,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	prometheus.RecordDomainOperation("message", "create")

	err := s.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND empresa_id = ?", conversationID, tenantID).
		Updates(map[string]interface{}{"last_message_at": ts, "updated_at": ts}).Error
	if err != nil {
		return nil, fmt.Errorf("touching conversation: %w", err)
	}
	return &message, nil
}

// apply writes u with a fresh updated_at and returns the re-read conversation
func (s *ChatService) apply(ctx context.Context, tenantID, conversationID, operation string, u updates) (*model.Conversation, error) {
	u["updated_at"] = now()
	err := s.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND empresa_id = ?", conversationID, tenantID).
		Updates(map[string]interface{}(u)).Error
	if err != nil {
		return nil, fmt.Errorf("updating conversation: %w", err)
	}
	prometheus.RecordDomainOperation("conversation", operation)

	s.log.Debug("Conversation updated", zap.String("conversation_id", conversationID), zap.String("operation", operation))
	return s.Get(ctx, tenantID, conversationID)
}
