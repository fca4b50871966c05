package models

import "time"

// Message is a direct note between two users, optionally about a listing.
type Message struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"senderId" gorm:"index;not null"`
	Sender      *User      `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	RecipientID uint       `json:"recipientId" gorm:"index;not null"`
	Recipient   *User      `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	PropertyID  *uint      `json:"propertyId,omitempty"`
	Property    *Property  `json:"property,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL"`
	Body        string     `json:"body" gorm:"type:text;not null"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}
