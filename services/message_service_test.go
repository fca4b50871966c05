package services

import (
	"context"
	"testing"

	"makazi/constants"
	"makazi/dto"
	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"
	"makazi/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendAndRead(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewMessageService(MessageServiceOptions{DB: db, Logger: logger.Discard(), Notifier: notifier})
	tenant := seedUser(t, db, "tenant", types.RoleTenant)
	landlord := seedUser(t, db, "landlord", types.RoleLandlord)
	property := seedProperty(t, db, landlord.ID, "Flat", "Ngong Road", 20000, true)
	ctx := context.Background()

	msg, err := svc.Send(ctx, tenantActor(tenant), dto.SendMessageInput{
		RecipientID: landlord.ID,
		PropertyID:  &property.ID,
		Body:        "  Is parking included?  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Is parking included?", msg.Body)

	sent := notifier.sentTo(landlord.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, constants.NotificationNewMessage, sent[0].Kind)
	assert.Equal(t, msg.ID, sent[0].RefID)

	inbox, total, err := svc.Inbox(ctx, landlordActor(landlord), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, inbox, 1)
	require.NotNil(t, inbox[0].Sender)
	assert.Equal(t, "tenant", inbox[0].Sender.Username)
	assert.Nil(t, inbox[0].ReadAt)

	outbox, _, err := svc.Sent(ctx, tenantActor(tenant), 0, 10)
	require.NoError(t, err)
	require.Len(t, outbox, 1)

	err = svc.MarkRead(ctx, tenantActor(tenant), msg.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound), "sender cannot mark read: %v", err)

	require.NoError(t, svc.MarkRead(ctx, landlordActor(landlord), msg.ID))
	require.NoError(t, svc.MarkRead(ctx, landlordActor(landlord), msg.ID))

	var stored models.Message
	require.NoError(t, db.First(&stored, msg.ID).Error)
	assert.NotNil(t, stored.ReadAt)
}

func TestMessageService_SendRejects(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(MessageServiceOptions{DB: db, Logger: logger.Discard()})
	tenant := seedUser(t, db, "tenant", types.RoleTenant)
	landlord := seedUser(t, db, "landlord", types.RoleLandlord)
	ctx := context.Background()
	missing := uint(404)

	tests := []struct {
		name  string
		actor *Actor
		input dto.SendMessageInput
		code  errors.ErrorCode
	}{
		{"anonymous", nil, dto.SendMessageInput{RecipientID: landlord.ID, Body: "hi"}, errors.ErrCodeUnauthorized},
		{"blank body", tenantActor(tenant), dto.SendMessageInput{RecipientID: landlord.ID, Body: "   "}, errors.ErrCodeRequiredField},
		{"to self", tenantActor(tenant), dto.SendMessageInput{RecipientID: tenant.ID, Body: "hi"}, errors.ErrCodeInvalidOperation},
		{"unknown recipient", tenantActor(tenant), dto.SendMessageInput{RecipientID: 999, Body: "hi"}, errors.ErrCodeUserNotFound},
		{"unknown property", tenantActor(tenant), dto.SendMessageInput{RecipientID: landlord.ID, PropertyID: &missing, Body: "hi"}, errors.ErrCodePropertyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.actor, tt.input)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestMessageService_HiddenListingsStayHidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewMessageService(MessageServiceOptions{DB: db, Logger: logger.Discard()})
	tenant := seedUser(t, db, "tenant", types.RoleTenant)
	landlord := seedUser(t, db, "landlord", types.RoleLandlord)
	admin := seedUser(t, db, "admin", types.RoleAdmin)
	draft := seedProperty(t, db, landlord.ID, "Draft", "Syokimau", 18000, false)
	ctx := context.Background()

	_, err := svc.Send(ctx, tenantActor(tenant), dto.SendMessageInput{RecipientID: landlord.ID, PropertyID: &draft.ID, Body: "Is this free?"})
	assert.True(t, errors.HasCode(err, errors.ErrCodePropertyNotFound), "got %v", err)

	_, err = svc.Send(ctx, landlordActor(landlord), dto.SendMessageInput{RecipientID: admin.ID, PropertyID: &draft.ID, Body: "Please review"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, adminActor(admin), dto.SendMessageInput{RecipientID: landlord.ID, PropertyID: &draft.ID, Body: "Add photos"})
	require.NoError(t, err)
}
