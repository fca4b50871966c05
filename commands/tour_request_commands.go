package commands

import (
	"makazi/errors"
	"makazi/models"
	"makazi/types"

	"gorm.io/gorm"
)

// TourRequestCommand is one write against the tour request tables.
type TourRequestCommand interface {
	Execute() error
}

// CreateTourRequestCommand inserts a pending request and its first history row.
type CreateTourRequestCommand struct {
	request *models.TourRequest
	actorID uint
	db      *gorm.DB
}

func NewCreateTourRequestCommand(request *models.TourRequest, actorID uint, db *gorm.DB) *CreateTourRequestCommand {
	return &CreateTourRequestCommand{
		request: request,
		actorID: actorID,
		db:      db,
	}
}

func (c *CreateTourRequestCommand) Execute() error {
	if err := c.db.Create(c.request).Error; err != nil {
		return err
	}
	return c.db.Create(&models.TourRequestEvent{
		TourRequestID: c.request.ID,
		ToStatus:      c.request.Status,
		ActorID:       c.actorID,
		ActorRole:     types.RoleTenant,
		Note:          c.request.Message,
	}).Error
}

// TransitionTourRequestCommand persists a transition already applied in memory.
// The update only matches while the row is still in the from status.
type TransitionTourRequestCommand struct {
	request *models.TourRequest
	from    models.TourStatus
	actorID uint
	role    types.Role
	note    string
	db      *gorm.DB
}

func NewTransitionTourRequestCommand(request *models.TourRequest, from models.TourStatus, actorID uint, role types.Role, note string, db *gorm.DB) *TransitionTourRequestCommand {
	return &TransitionTourRequestCommand{
		request: request,
		from:    from,
		actorID: actorID,
		role:    role,
		note:    note,
		db:      db,
	}
}

func (c *TransitionTourRequestCommand) Execute() error {
	updates := map[string]interface{}{
		"status":                  c.request.Status,
		"landlord_suggested_date": nil,
		"landlord_message":        nil,
		"responded_at":            nil,
	}
	if c.request.LandlordSuggestedDate != nil {
		updates["landlord_suggested_date"] = *c.request.LandlordSuggestedDate
	}
	if c.request.LandlordMessage != nil {
		updates["landlord_message"] = *c.request.LandlordMessage
	}
	if c.request.RespondedAt != nil {
		updates["responded_at"] = *c.request.RespondedAt
	}

	res := c.db.Model(&models.TourRequest{}).
		Where("id = ? AND status = ?", c.request.ID, c.from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrStaleTransition
	}

	return c.db.Create(&models.TourRequestEvent{
		TourRequestID: c.request.ID,
		FromStatus:    c.from,
		ToStatus:      c.request.Status,
		ActorID:       c.actorID,
		ActorRole:     c.role,
		Note:          c.note,
	}).Error
}
