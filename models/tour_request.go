package models

import (
	"fmt"
	"time"

	"makazi/types"
)

type TourStatus string

const (
	TourStatusPending   TourStatus = "pending"
	TourStatusApproved  TourStatus = "approved"
	TourStatusDenied    TourStatus = "denied"
	TourStatusCancelled TourStatus = "cancelled"
)

func ParseTourStatus(s string) (TourStatus, error) {
	status := TourStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown tour request status %q", s)
	}
	return status, nil
}

func (s TourStatus) Valid() bool {
	switch s {
	case TourStatusPending, TourStatusApproved, TourStatusDenied, TourStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TourStatus) IsTerminal() bool {
	return s == TourStatusApproved || s == TourStatusDenied || s == TourStatusCancelled
}

type TourRequest struct {
	ID                    uint               `json:"id" gorm:"primaryKey"`
	PropertyID            uint               `json:"propertyId" gorm:"index;not null"`
	Property              *Property          `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	TenantID              uint               `json:"tenantId" gorm:"index;not null"`
	Tenant                *User              `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	LandlordID            uint               `json:"landlordId" gorm:"index;not null"`
	Landlord              *User              `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	RequestedDate         types.Date         `json:"requestedDate" gorm:"type:date;not null;index"`
	Message               string             `json:"message" gorm:"type:text"`
	Status                TourStatus         `json:"status" gorm:"type:varchar(16);not null;index;check:status IN ('pending','approved','denied','cancelled')"`
	LandlordSuggestedDate *types.Date        `json:"landlordSuggestedDate,omitempty" gorm:"type:date"`
	LandlordMessage       *string            `json:"landlordMessage,omitempty" gorm:"type:text"`
	RespondedAt           *time.Time         `json:"respondedAt,omitempty"`
	CreatedAt             time.Time          `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt             time.Time          `json:"updatedAt" gorm:"autoUpdateTime"`
	Events                []TourRequestEvent `json:"events,omitempty" gorm:"foreignKey:TourRequestID"`
}

// IsParticipant reports whether userID is the tenant or landlord of the request.
func (r *TourRequest) IsParticipant(userID uint) bool {
	return userID != 0 && (r.TenantID == userID || r.LandlordID == userID)
}
