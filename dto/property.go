package dto

import (
	"time"

	"makazi/types"
)

// CreatePropertyInput arrives as multipart form fields next to the "images" files.
type CreatePropertyInput struct {
	Title    string `form:"title" json:"title" binding:"required,max=200"`
	Location string `form:"location" json:"location" binding:"required,max=200"`
	Price    int64  `form:"price" json:"price" binding:"required,gt=0"`
	Details  string `form:"details" json:"details" binding:"max=5000"`
}

type UpdatePropertyInput struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=200"`
	Location *string `json:"location" binding:"omitempty,min=1,max=200"`
	Price    *int64  `json:"price" binding:"omitempty,gt=0"`
	Details  *string `json:"details" binding:"omitempty,max=5000"`
}

type UpdatePropertyStatusInput struct {
	Status string `json:"status" binding:"required,oneof=available rented unavailable"`
}

type PropertySearchFilter struct {
	Location string `form:"location" json:"location,omitempty"`
	PriceMax int64  `form:"priceMax" json:"priceMax,omitempty"`
	Page     int    `form:"page" json:"page"`
	Limit    int    `form:"limit" json:"limit"`
	Merge    bool   `form:"merge" json:"-"`
}

type PropertyResponse struct {
	ID            uint               `json:"id"`
	LandlordID    uint               `json:"landlordId"`
	Landlord      *types.UserSummary `json:"landlord,omitempty"`
	Title         string             `json:"title"`
	Location      string             `json:"location"`
	Price         int64              `json:"price"`
	Details       string             `json:"details"`
	CoverImageURL string             `json:"coverImageUrl"`
	Images        []string           `json:"images"`
	IsVerified    bool               `json:"isVerified"`
	IsRented      bool               `json:"isRented"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type PropertySearchResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Suggestion string             `json:"suggestion,omitempty"`
}
