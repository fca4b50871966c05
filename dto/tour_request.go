package dto

import (
	"time"

	"makazi/types"
)

type CreateTourRequestInput struct {
	PropertyID    uint   `json:"propertyId"`
	RequestedDate string `json:"requestedDate" binding:"required,isodate"`
	Message       string `json:"message" binding:"max=2000"`
}

type DenyTourRequestInput struct {
	SuggestedDate string `json:"suggestedDate" binding:"omitempty,isodate"`
	Message       string `json:"message" binding:"max=2000"`
}

type TourRequestFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type PropertyBrief struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	Price         int64  `json:"price"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
}

type TourRequestEventResponse struct {
	FromStatus string     `json:"fromStatus,omitempty"`
	ToStatus   string     `json:"toStatus"`
	ActorID    uint       `json:"actorId"`
	ActorRole  types.Role `json:"actorRole"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type TourRequestResponse struct {
	ID                    uint                       `json:"id"`
	Status                string                     `json:"status"`
	RequestedDate         types.Date                 `json:"requestedDate"`
	Message               string                     `json:"message,omitempty"`
	LandlordSuggestedDate *types.Date                `json:"landlordSuggestedDate,omitempty"`
	LandlordMessage       *string                    `json:"landlordMessage,omitempty"`
	RespondedAt           *time.Time                 `json:"respondedAt,omitempty"`
	CreatedAt             time.Time                  `json:"createdAt"`
	Property              *PropertyBrief             `json:"property,omitempty"`
	Tenant                *types.UserSummary         `json:"tenant,omitempty"`
	Landlord              *types.UserSummary         `json:"landlord,omitempty"`
	Events                []TourRequestEventResponse `json:"events,omitempty"`
}

type TourTemplateResponse struct {
	Message string `json:"message"`
}
