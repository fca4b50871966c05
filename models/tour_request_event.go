package models

import (
	"time"

	"makazi/types"
)

// TourRequestEvent records one status change of a tour request.
type TourRequestEvent struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	TourRequestID uint       `json:"tourRequestId" gorm:"index;not null"`
	FromStatus    TourStatus `json:"fromStatus,omitempty" gorm:"type:varchar(16)"`
	ToStatus      TourStatus `json:"toStatus" gorm:"type:varchar(16);not null"`
	ActorID       uint       `json:"actorId"`
	ActorRole     types.Role `json:"actorRole"`
	Note          string     `json:"note,omitempty" gorm:"type:text"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}
