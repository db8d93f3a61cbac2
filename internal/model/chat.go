package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ConversationStatusActive = "active"
	ConversationStatusClosed = "closed"

	MessageTypeText   = "text"
	MessageStatusSent = "sent"
)

// WhatsappInstance is a connected WhatsApp number
type WhatsappInstance struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	TenantID        string    `json:"-" gorm:"column:empresa_id;index;not null"`
	Name            string    `json:"name" gorm:"not null"`
	PhoneNumber     string    `json:"phone_number"`
	Status          string    `json:"status"`
	DisplayName     *string   `json:"display_name"`
	AutoCreateLeads bool      `json:"auto_create_leads"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (WhatsappInstance) TableName() string { return "whatsapp_instances" }

func (i *WhatsappInstance) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Conversation is a chat thread with a contact
type Conversation struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	TenantID       string     `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	LeadID         *string    `json:"lead_id"`
	InstanceID     *string    `json:"instance_id"`
	Fone           *string    `json:"fone"`
	NomeInstancia  *string    `json:"nome_instancia"`
	NomeWhatsapp   *string    `json:"Nome_Whatsapp" gorm:"column:Nome_Whatsapp"`
	AssignedUserID *string    `json:"assigned_user_id"`
	CodLid         *string    `json:"cod_lid"`
	Status         string     `json:"status" gorm:"not null"`
	LastMessageAt  *time.Time `json:"last_message_at"`
	MessageCount   int        `json:"message_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Conversation) TableName() string { return "chat_conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Message is a single chat message inside a conversation
type Message struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	ConversationID string     `json:"conversation_id" gorm:"index;not null"`
	InstanceID     *string    `json:"instance_id"`
	MessageType    string     `json:"message_type"`
	Content        *string    `json:"content"`
	MediaURL       *string    `json:"media_url"`
	Direction      string     `json:"direction" gorm:"not null"`
	Status         string     `json:"status"`
	Timestamp      *time.Time `json:"timestamp" gorm:"column:timestamp"`
	TenantID       string     `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
