package services

import (
	"makazi/constants"
	"makazi/errors"
	"makazi/types"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role types.Role
}

func (a *Actor) Authenticated() bool {
	return a != nil && a.ID != 0
}

func (a *Actor) Is(role types.Role) bool {
	return a.Authenticated() && a.Role == role
}

func requireActor(a *Actor, roles ...types.Role) error {
	if !a.Authenticated() {
		return errors.NewAppError(errors.ErrCodeUnauthorized, "Please sign in first", errors.ErrUnauthorized)
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if a.Role == role {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeForbidden, "This action is not available for your role", nil)
}

func pageBounds(page, limit int) (int, int) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}
	if limit > constants.MaxPageLimit {
		limit = constants.MaxPageLimit
	}
	return page, limit
}
