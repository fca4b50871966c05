package models

import (
	"time"

	"makazi/constants"

	"github.com/lib/pq"
)

// Property is a rental listing. Images[0] is the cover.
type Property struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	LandlordID     uint           `json:"landlordId" gorm:"index;not null"`
	Landlord       *User          `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	Title          string         `json:"title" gorm:"not null"`
	Location       string         `json:"location" gorm:"not null;index"`
	Price          int64          `json:"price" gorm:"not null"`
	Details        string         `json:"details" gorm:"type:text"`
	Images         pq.StringArray `json:"images" gorm:"type:text"`
	ImagePublicIDs pq.StringArray `json:"-" gorm:"type:text"`
	IsVerified     bool           `json:"isVerified" gorm:"default:false;index"`
	IsRented       bool           `json:"isRented" gorm:"default:false"`
	Status         string         `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Property) CoverImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// SetStatus keeps IsRented in step with Status.
func (p *Property) SetStatus(status string) {
	p.Status = status
	p.IsRented = status == constants.PropertyStatusRented
}

// AcceptsTours reports whether tenants may request a viewing.
func (p *Property) AcceptsTours() bool {
	return p.IsVerified && !p.IsRented && p.Status == constants.PropertyStatusAvailable
}

func IsValidPropertyStatus(status string) bool {
	for _, s := range constants.PropertyStatuses {
		if s == status {
			return true
		}
	}
	return false
}
