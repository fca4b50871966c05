package services

import (
	"context"
	"testing"
	"time"

	"makazi/constants"
	"makazi/dto"
	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"
	"makazi/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tourFixture struct {
	db       *gorm.DB
	svc      *TourRequestService
	notifier *recordingNotifier
	tenant   *models.User
	landlord *models.User
	admin    *models.User
	property *models.Property
	now      time.Time
}

func newTourFixture(t *testing.T) *tourFixture {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)

	f := &tourFixture{
		db:       newTestDB(t),
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 6, 1, 9, 30, 0, 0, loc),
	}
	f.svc = NewTourRequestService(TourRequestServiceOptions{
		DB:       f.db,
		Logger:   logger.Discard(),
		Notifier: f.notifier,
		Location: loc,
		Now:      func() time.Time { return f.now },
	})
	f.tenant = seedUser(t, f.db, "tenant", types.RoleTenant)
	f.landlord = seedUser(t, f.db, "landlord", types.RoleLandlord)
	f.admin = seedUser(t, f.db, "admin", types.RoleAdmin)
	f.property = seedProperty(t, f.db, f.landlord.ID, "Garden flat", "Westlands, Nairobi", 45000, true)
	return f
}

func (f *tourFixture) request(t *testing.T, date string) *models.TourRequest {
	t.Helper()
	r, err := f.svc.Create(context.Background(), tenantActor(f.tenant), dto.CreateTourRequestInput{
		PropertyID:    f.property.ID,
		RequestedDate: date,
		Message:       "Can I come by?",
	})
	require.NoError(t, err)
	return r
}

func (f *tourFixture) reload(t *testing.T, id uint) models.TourRequest {
	t.Helper()
	var r models.TourRequest
	require.NoError(t, f.db.First(&r, id).Error)
	return r
}

func (f *tourFixture) events(t *testing.T, id uint) []models.TourRequestEvent {
	t.Helper()
	var events []models.TourRequestEvent
	require.NoError(t, f.db.Where("tour_request_id = ?", id).Order("id ASC").Find(&events).Error)
	return events
}

func TestTourRequestService_Create(t *testing.T) {
	f := newTourFixture(t)

	r := f.request(t, "2025-06-05")

	assert.Equal(t, models.TourStatusPending, r.Status)
	assert.Equal(t, f.property.ID, r.PropertyID)
	assert.Equal(t, f.tenant.ID, r.TenantID)
	assert.Equal(t, f.landlord.ID, r.LandlordID)
	assert.Equal(t, "2025-06-05", r.RequestedDate.String())
	assert.Nil(t, r.RespondedAt)

	stored := f.reload(t, r.ID)
	assert.Equal(t, models.TourStatusPending, stored.Status)
	assert.Equal(t, "2025-06-05", stored.RequestedDate.String())

	events := f.events(t, r.ID)
	require.Len(t, events, 1)
	assert.Equal(t, models.TourStatus(""), events[0].FromStatus)
	assert.Equal(t, models.TourStatusPending, events[0].ToStatus)
	assert.Equal(t, types.RoleTenant, events[0].ActorRole)

	sent := f.notifier.sentTo(f.landlord.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, constants.NotificationTourRequested, sent[0].Kind)
	assert.Equal(t, r.ID, sent[0].RefID)
}

func TestTourRequestService_CreateToday(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-01")
	assert.Equal(t, "2025-06-01", r.RequestedDate.String())
}

func TestTourRequestService_CreateRejects(t *testing.T) {
	f := newTourFixture(t)
	unverified := seedProperty(t, f.db, f.landlord.ID, "Draft", "Kilimani", 30000, false)
	rented := seedProperty(t, f.db, f.landlord.ID, "Taken", "Karen", 90000, true)
	rented.SetStatus(constants.PropertyStatusRented)
	require.NoError(t, f.db.Save(rented).Error)

	tests := []struct {
		name  string
		actor *Actor
		input dto.CreateTourRequestInput
		code  errors.ErrorCode
	}{
		{
			name:  "anonymous",
			actor: nil,
			input: dto.CreateTourRequestInput{PropertyID: f.property.ID, RequestedDate: "2025-06-05"},
			code:  errors.ErrCodeUnauthorized,
		},
		{
			name:  "landlord",
			actor: landlordActor(f.landlord),
			input: dto.CreateTourRequestInput{PropertyID: f.property.ID, RequestedDate: "2025-06-05"},
			code:  errors.ErrCodeForbidden,
		},
		{
			name:  "missing property",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{RequestedDate: "2025-06-05"},
			code:  errors.ErrCodeRequiredField,
		},
		{
			name:  "malformed date",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{PropertyID: f.property.ID, RequestedDate: "05/06/2025"},
			code:  errors.ErrCodeInvalidFormat,
		},
		{
			name:  "date in the past",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{PropertyID: f.property.ID, RequestedDate: "2025-05-31"},
			code:  errors.ErrCodeValidation,
		},
		{
			name:  "unknown property",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{PropertyID: 9999, RequestedDate: "2025-06-05"},
			code:  errors.ErrCodePropertyNotFound,
		},
		{
			name:  "unverified property",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{PropertyID: unverified.ID, RequestedDate: "2025-06-05"},
			code:  errors.ErrCodeInvalidOperation,
		},
		{
			name:  "rented property",
			actor: tenantActor(f.tenant),
			input: dto.CreateTourRequestInput{PropertyID: rented.ID, RequestedDate: "2025-06-05"},
			code:  errors.ErrCodeInvalidOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.actor, tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.TourRequest{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.notifier.count())
}

func TestTourRequestService_Approve(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")

	approved, err := f.svc.Approve(context.Background(), landlordActor(f.landlord), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourStatusApproved, approved.Status)
	require.NotNil(t, approved.RespondedAt)
	assert.True(t, approved.RespondedAt.Equal(f.now))
	assert.Nil(t, approved.LandlordSuggestedDate)

	stored := f.reload(t, r.ID)
	assert.Equal(t, models.TourStatusApproved, stored.Status)
	assert.NotNil(t, stored.RespondedAt)

	events := f.events(t, r.ID)
	require.Len(t, events, 2)
	assert.Equal(t, models.TourStatusPending, events[1].FromStatus)
	assert.Equal(t, models.TourStatusApproved, events[1].ToStatus)
	assert.Equal(t, f.landlord.ID, events[1].ActorID)

	sent := f.notifier.sentTo(f.tenant.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, constants.NotificationTourApproved, sent[0].Kind)
}

func TestTourRequestService_TerminalStatesAreFinal(t *testing.T) {
	ctx := context.Background()

	finish := map[string]func(f *tourFixture, id uint) error{
		"approved": func(f *tourFixture, id uint) error {
			_, err := f.svc.Approve(ctx, landlordActor(f.landlord), id)
			return err
		},
		"denied": func(f *tourFixture, id uint) error {
			_, err := f.svc.Deny(ctx, landlordActor(f.landlord), id, dto.DenyTourRequestInput{})
			return err
		},
		"cancelled": func(f *tourFixture, id uint) error {
			_, err := f.svc.Cancel(ctx, tenantActor(f.tenant), id)
			return err
		},
	}

	for status, done := range finish {
		t.Run(status, func(t *testing.T) {
			f := newTourFixture(t)
			r := f.request(t, "2025-06-05")
			require.NoError(t, done(f, r.ID))

			for action, again := range finish {
				err := again(f, r.ID)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidState), "%s after %s: got %v", action, status, err)
			}
			assert.Equal(t, models.TourStatus(status), f.reload(t, r.ID).Status)
			assert.Len(t, f.events(t, r.ID), 2)
		})
	}
}

func TestTourRequestService_DenyWithSuggestion(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")

	denied, err := f.svc.Deny(context.Background(), landlordActor(f.landlord), r.ID, dto.DenyTourRequestInput{
		SuggestedDate: "2025-06-07",
		Message:       "  Saturday works better  ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TourStatusDenied, denied.Status)
	require.NotNil(t, denied.LandlordSuggestedDate)
	assert.Equal(t, "2025-06-07", denied.LandlordSuggestedDate.String())
	require.NotNil(t, denied.LandlordMessage)
	assert.Equal(t, "Saturday works better", *denied.LandlordMessage)

	stored := f.reload(t, r.ID)
	require.NotNil(t, stored.LandlordSuggestedDate)
	assert.Equal(t, "2025-06-07", stored.LandlordSuggestedDate.String())
	require.NotNil(t, stored.LandlordMessage)
	assert.Equal(t, "Saturday works better", *stored.LandlordMessage)

	sent := f.notifier.sentTo(f.tenant.ID)
	require.Len(t, sent, 1)
	assert.Equal(t, constants.NotificationTourDenied, sent[0].Kind)
	assert.Contains(t, sent[0].Message, "2025-06-07")
}

func TestTourRequestService_DenyWithoutSuggestion(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")

	denied, err := f.svc.Deny(context.Background(), landlordActor(f.landlord), r.ID, dto.DenyTourRequestInput{})
	require.NoError(t, err)
	assert.Nil(t, denied.LandlordSuggestedDate)
	assert.Nil(t, denied.LandlordMessage)

	stored := f.reload(t, r.ID)
	assert.Nil(t, stored.LandlordSuggestedDate)
	assert.Nil(t, stored.LandlordMessage)
}

func TestTourRequestService_DenyRejectsPastSuggestion(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")

	_, err := f.svc.Deny(context.Background(), landlordActor(f.landlord), r.ID, dto.DenyTourRequestInput{SuggestedDate: "2025-05-20"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation), "got %v", err)
	assert.Equal(t, models.TourStatusPending, f.reload(t, r.ID).Status)
}

func TestTourRequestService_Ownership(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")
	otherLandlord := seedUser(t, f.db, "otherlandlord", types.RoleLandlord)
	otherTenant := seedUser(t, f.db, "othertenant", types.RoleTenant)
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, landlordActor(otherLandlord), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Deny(ctx, landlordActor(otherLandlord), r.ID, dto.DenyTourRequestInput{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Cancel(ctx, tenantActor(otherTenant), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Approve(ctx, tenantActor(f.tenant), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Cancel(ctx, landlordActor(f.landlord), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Approve(ctx, adminActor(f.admin), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Approve(ctx, nil, r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized), "got %v", err)

	_, err = f.svc.Approve(ctx, landlordActor(f.landlord), 4242)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTourRequestNotFound), "got %v", err)

	assert.Equal(t, models.TourStatusPending, f.reload(t, r.ID).Status)
}

func TestTourRequestService_Cancel(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")

	cancelled, err := f.svc.Cancel(context.Background(), tenantActor(f.tenant), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourStatusCancelled, cancelled.Status)
	assert.Equal(t, models.TourStatusCancelled, f.reload(t, r.ID).Status)

	// one notice for the request, one for the cancellation
	sent := f.notifier.sentTo(f.landlord.ID)
	require.Len(t, sent, 2)
	assert.Equal(t, constants.NotificationTourCancelled, sent[1].Kind)
}

func TestTourRequestService_NotifierFailureDoesNotUndoTransition(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")
	f.notifier.err = assert.AnError

	_, err := f.svc.Approve(context.Background(), landlordActor(f.landlord), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TourStatusApproved, f.reload(t, r.ID).Status)
}

func TestTourRequestService_Get(t *testing.T) {
	f := newTourFixture(t)
	r := f.request(t, "2025-06-05")
	_, err := f.svc.Approve(context.Background(), landlordActor(f.landlord), r.ID)
	require.NoError(t, err)
	stranger := seedUser(t, f.db, "stranger", types.RoleTenant)
	ctx := context.Background()

	for _, actor := range []*Actor{tenantActor(f.tenant), landlordActor(f.landlord), adminActor(f.admin)} {
		got, err := f.svc.Get(ctx, actor, r.ID)
		require.NoError(t, err)
		require.Len(t, got.Events, 2)
		assert.Equal(t, models.TourStatusPending, got.Events[0].ToStatus)
		assert.Equal(t, models.TourStatusApproved, got.Events[1].ToStatus)
		require.NotNil(t, got.Property)
		assert.Equal(t, "Garden flat", got.Property.Title)
	}

	_, err = f.svc.Get(ctx, tenantActor(stranger), r.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)

	_, err = f.svc.Get(ctx, tenantActor(f.tenant), 999)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTourRequestNotFound), "got %v", err)
}

func TestTourRequestService_Lists(t *testing.T) {
	f := newTourFixture(t)
	ctx := context.Background()

	first := f.request(t, "2025-06-03")
	second := f.request(t, "2025-06-10")
	third := f.request(t, "2025-06-04")

	_, err := f.svc.Approve(ctx, landlordActor(f.landlord), second.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, landlordActor(f.landlord), third.ID)
	require.NoError(t, err)

	// an approved tour that already happened
	past := &models.TourRequest{
		PropertyID:    f.property.ID,
		TenantID:      f.tenant.ID,
		LandlordID:    f.landlord.ID,
		RequestedDate: types.NewDate(f.now.AddDate(0, 0, -3)),
		Status:        models.TourStatusApproved,
	}
	require.NoError(t, f.db.Create(past).Error)

	t.Run("tenant sees newest first", func(t *testing.T) {
		requests, total, err := f.svc.ListForTenant(ctx, tenantActor(f.tenant), 0, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		require.Len(t, requests, 2)
		assert.Equal(t, past.ID, requests[0].ID)
		assert.Equal(t, third.ID, requests[1].ID)

		next, _, err := f.svc.ListForTenant(ctx, tenantActor(f.tenant), 1, 2)
		require.NoError(t, err)
		require.Len(t, next, 2)
		assert.Equal(t, second.ID, next[0].ID)
		assert.Equal(t, first.ID, next[1].ID)
	})

	t.Run("landlord pending oldest first", func(t *testing.T) {
		requests, err := f.svc.ListPendingForLandlord(ctx, landlordActor(f.landlord))
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, first.ID, requests[0].ID)
		require.NotNil(t, requests[0].Tenant)
		assert.Equal(t, "tenant", requests[0].Tenant.Username)
	})

	t.Run("landlord upcoming by date", func(t *testing.T) {
		requests, err := f.svc.ListUpcomingForLandlord(ctx, landlordActor(f.landlord))
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, third.ID, requests[0].ID)
		assert.Equal(t, second.ID, requests[1].ID)
	})

	t.Run("other landlord sees nothing", func(t *testing.T) {
		other := seedUser(t, f.db, "emptylandlord", types.RoleLandlord)
		requests, err := f.svc.ListPendingForLandlord(ctx, landlordActor(other))
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("admin filters by status", func(t *testing.T) {
		requests, total, err := f.svc.ListAll(ctx, adminActor(f.admin), dto.TourRequestFilter{Status: "approved"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, requests, 3)

		_, _, err = f.svc.ListAll(ctx, adminActor(f.admin), dto.TourRequestFilter{Status: "maybe"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidStatus), "got %v", err)

		_, _, err = f.svc.ListAll(ctx, tenantActor(f.tenant), dto.TourRequestFilter{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "got %v", err)
	})
}

func TestTourRequestService_SendTourReminders(t *testing.T) {
	f := newTourFixture(t)
	ctx := context.Background()

	today := f.request(t, "2025-06-01")
	later := f.request(t, "2025-06-02")
	pending := f.request(t, "2025-06-01")
	for _, id := range []uint{today.ID, later.ID} {
		_, err := f.svc.Approve(ctx, landlordActor(f.landlord), id)
		require.NoError(t, err)
	}
	_ = pending

	before := f.notifier.count()
	sent, err := f.svc.SendTourReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, before+2, f.notifier.count())

	reminders := 0
	for _, n := range append(f.notifier.sentTo(f.tenant.ID), f.notifier.sentTo(f.landlord.ID)...) {
		if n.Kind == constants.NotificationTourReminder {
			reminders++
			assert.Equal(t, today.ID, n.RefID)
		}
	}
	assert.Equal(t, 2, reminders)
}

func TestTourRequestService_TodayUsesConfiguredTimezone(t *testing.T) {
	f := newTourFixture(t)
	// 22:30 UTC on May 31 is already June 1 in Nairobi.
	f.now = time.Date(2025, 5, 31, 22, 30, 0, 0, time.UTC)

	r := f.request(t, "2025-06-01")
	assert.Equal(t, "2025-06-01", r.RequestedDate.String())
}
