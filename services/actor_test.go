package services

import (
	"testing"

	"makazi/constants"
	"makazi/types"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{-1, 0, 0, constants.DefaultPageLimit},
		{2, 25, 2, 25},
		{0, constants.MaxPageLimit + 1, 0, constants.MaxPageLimit},
	}
	for _, tt := range tests {
		page, limit := pageBounds(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestRequireActor(t *testing.T) {
	assert.Error(t, requireActor(nil))
	assert.Error(t, requireActor(&Actor{ID: 1, Role: types.RoleTenant}, types.RoleLandlord))
	assert.NoError(t, requireActor(&Actor{ID: 1, Role: types.RoleAdmin}, types.RoleLandlord, types.RoleAdmin))
}
