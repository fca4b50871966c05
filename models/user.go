package models

import (
	"time"

	"makazi/types"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	Name      string     `gorm:"not null" json:"name"`
	Username  string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Password  string     `json:"-"`
	Avatar    string     `json:"avatar"`
	Role      types.Role `gorm:"default:0;not null" json:"role"`
}

func (User) TableName() string {
	return "user_profiles"
}

func (u User) Summary() types.UserSummary {
	return types.UserSummary{ID: u.ID, Name: u.Name, Username: u.Username}
}
