package dto

import (
	"time"

	"makazi/types"
)

type SendMessageInput struct {
	RecipientID uint   `json:"recipientId" binding:"required"`
	PropertyID  *uint  `json:"propertyId"`
	Body        string `json:"body" binding:"required,max=4000"`
}

type MessageResponse struct {
	ID         uint               `json:"id"`
	Sender     *types.UserSummary `json:"sender,omitempty"`
	Recipient  *types.UserSummary `json:"recipient,omitempty"`
	PropertyID *uint              `json:"propertyId,omitempty"`
	Body       string             `json:"body"`
	ReadAt     *time.Time         `json:"readAt,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}
