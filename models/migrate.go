package models

import "gorm.io/gorm"

// Registry lists every persisted model in dependency order.
func Registry() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&TourRequest{},
		&TourRequestEvent{},
		&Notification{},
		&Message{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Registry()...)
}
