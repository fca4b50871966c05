package builders

import (
	"strings"

	"makazi/models"
	"makazi/types"
)

// TourRequestBuilder assembles a new tour request step by step.
type TourRequestBuilder struct {
	request *models.TourRequest
}

func NewTourRequestBuilder() *TourRequestBuilder {
	return &TourRequestBuilder{
		request: &models.TourRequest{Status: models.TourStatusPending},
	}
}

// ForProperty also copies the landlord from the listing.
func (b *TourRequestBuilder) ForProperty(property *models.Property) *TourRequestBuilder {
	b.request.PropertyID = property.ID
	b.request.LandlordID = property.LandlordID
	return b
}

func (b *TourRequestBuilder) ByTenant(tenantID uint) *TourRequestBuilder {
	b.request.TenantID = tenantID
	return b
}

func (b *TourRequestBuilder) On(date types.Date) *TourRequestBuilder {
	b.request.RequestedDate = date
	return b
}

func (b *TourRequestBuilder) WithMessage(message string) *TourRequestBuilder {
	b.request.Message = strings.TrimSpace(message)
	return b
}

// Build returns the request, always in the pending state.
func (b *TourRequestBuilder) Build() *models.TourRequest {
	b.request.Status = models.TourStatusPending
	return b.request
}
