package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"makazi/builders"
	"makazi/commands"
	"makazi/constants"
	"makazi/dto"
	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"
	"makazi/services/notification"
	"makazi/types"
	"makazi/validator"

	"gorm.io/gorm"
)

const DefaultTimezone = "Africa/Nairobi"

type TourRequestServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier notification.Notifier
	Location *time.Location
	Now      func() time.Time
}

// TourRequestService runs the tour request workflow:
// pending, then exactly one of approved, denied or cancelled.
type TourRequestService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier notification.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewTourRequestService(opts TourRequestServiceOptions) *TourRequestService {
	s := &TourRequestService{
		db:       opts.DB,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if s.loc == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		s.loc = loc
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *TourRequestService) today() types.Date {
	return types.Today(s.now(), s.loc)
}

// Create files a pending request from a tenant for a verified, available listing.
func (s *TourRequestService) Create(ctx context.Context, actor *Actor, in dto.CreateTourRequestInput) (*models.TourRequest, error) {
	if !actor.Authenticated() {
		return nil, errors.NewAppError(errors.ErrCodeUnauthorized, "You must be logged in to request a tour", errors.ErrUnauthorized)
	}
	if actor.Role != types.RoleTenant {
		return nil, errors.NewAppError(errors.ErrCodeForbidden, "Only tenants can request tours", nil)
	}
	if in.PropertyID == 0 {
		return nil, errors.NewAppError(errors.ErrCodeRequiredField, "Property is required", errors.ErrMissingRequired)
	}
	date, err := validator.ParseTourDate("Requested date", in.RequestedDate, s.today())
	if err != nil {
		return nil, err
	}

	var property models.Property
	err = s.db.WithContext(ctx).First(&property, in.PropertyID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodePropertyNotFound, "Property not found", errors.ErrPropertyNotFound)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load property", err)
	}
	if !property.AcceptsTours() {
		return nil, errors.NewAppError(errors.ErrCodeInvalidOperation, "This property is not open for tours", errors.ErrPropertyNotAvailable)
	}

	request := builders.NewTourRequestBuilder().
		ForProperty(&property).
		ByTenant(actor.ID).
		On(date).
		WithMessage(in.Message).
		Build()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return commands.NewCreateTourRequestCommand(request, actor.ID, tx).Execute()
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not send tour request", err)
	}
	request.Property = &property

	s.notify(ctx, notification.Notice{
		UserID:  property.LandlordID,
		Kind:    constants.NotificationTourRequested,
		Title:   "New tour request",
		Message: fmt.Sprintf("A tenant asked to view %q on %s.", property.Title, date),
		RefID:   request.ID,
	})
	s.logger.Info("tenant %d requested tour %d of property %d for %s", actor.ID, request.ID, property.ID, date)
	return request, nil
}

// Approve accepts a pending request. Only the listing's landlord may do this.
func (s *TourRequestService) Approve(ctx context.Context, actor *Actor, id uint) (*models.TourRequest, error) {
	request, err := s.transition(ctx, actor, id, types.RoleLandlord, "", func(state models.TourRequestState, r *models.TourRequest, at time.Time) error {
		return state.Approve(r, at)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notification.Notice{
		UserID:  request.TenantID,
		Kind:    constants.NotificationTourApproved,
		Title:   "Tour approved",
		Message: fmt.Sprintf("Your tour of %s on %s was approved.", propertyTitle(request), request.RequestedDate),
		RefID:   request.ID,
	})
	return request, nil
}

// Deny rejects a pending request, optionally proposing another date.
func (s *TourRequestService) Deny(ctx context.Context, actor *Actor, id uint, in dto.DenyTourRequestInput) (*models.TourRequest, error) {
	var suggested *types.Date
	if strings.TrimSpace(in.SuggestedDate) != "" {
		d, err := validator.ParseTourDate("Suggested date", in.SuggestedDate, s.today())
		if err != nil {
			return nil, err
		}
		suggested = &d
	}
	var message *string
	if m := strings.TrimSpace(in.Message); m != "" {
		message = &m
	}

	note := ""
	if message != nil {
		note = *message
	}
	request, err := s.transition(ctx, actor, id, types.RoleLandlord, note, func(state models.TourRequestState, r *models.TourRequest, at time.Time) error {
		return state.Deny(r, at, suggested, message)
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Your tour of %s on %s was declined.", propertyTitle(request), request.RequestedDate)
	if suggested != nil {
		text += fmt.Sprintf(" The landlord suggested %s instead.", *suggested)
	}
	s.notify(ctx, notification.Notice{
		UserID:  request.TenantID,
		Kind:    constants.NotificationTourDenied,
		Title:   "Tour declined",
		Message: text,
		RefID:   request.ID,
	})
	return request, nil
}

// Cancel withdraws a pending request. Only the requesting tenant may do this.
func (s *TourRequestService) Cancel(ctx context.Context, actor *Actor, id uint) (*models.TourRequest, error) {
	request, err := s.transition(ctx, actor, id, types.RoleTenant, "", func(state models.TourRequestState, r *models.TourRequest, at time.Time) error {
		return state.Cancel(r, at)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notification.Notice{
		UserID:  request.LandlordID,
		Kind:    constants.NotificationTourCancelled,
		Title:   "Tour cancelled",
		Message: fmt.Sprintf("The tour of %s on %s was cancelled by the tenant.", propertyTitle(request), request.RequestedDate),
		RefID:   request.ID,
	})
	return request, nil
}

type applyFunc func(state models.TourRequestState, r *models.TourRequest, at time.Time) error

// transition validates the move against the current state, then writes it with a
// status-guarded update so a concurrent transition makes this one fail.
func (s *TourRequestService) transition(ctx context.Context, actor *Actor, id uint, role types.Role, note string, apply applyFunc) (*models.TourRequest, error) {
	if err := requireActor(actor, role); err != nil {
		return nil, err
	}
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == types.RoleLandlord && request.LandlordID != actor.ID {
		return nil, errors.NewAppError(errors.ErrCodeForbidden, "Only the landlord of this property can answer this request", nil)
	}
	if role == types.RoleTenant && request.TenantID != actor.ID {
		return nil, errors.NewAppError(errors.ErrCodeForbidden, "You can only cancel your own requests", nil)
	}

	state, err := models.GetTourRequestState(request.Status)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInternal, "Tour request is in an unknown state", err)
	}
	from := request.Status
	if err := apply(state, request, s.now()); err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidState, err.Error(), err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return commands.NewTransitionTourRequestCommand(request, from, actor.ID, actor.Role, note, tx).Execute()
	})
	if stderrors.Is(err, errors.ErrStaleTransition) {
		return nil, errors.NewAppError(errors.ErrCodeInvalidState, "This tour request has already been answered or cancelled", err)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not update tour request", err)
	}

	s.logger.Info("tour request %d: %s -> %s by %s %d", request.ID, from, request.Status, actor.Role, actor.ID)
	return request, nil
}

func (s *TourRequestService) find(ctx context.Context, id uint) (*models.TourRequest, error) {
	var request models.TourRequest
	err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Preload("Landlord").
		First(&request, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeTourRequestNotFound, "Tour request not found", errors.ErrTourRequestNotFound)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour request", err)
	}
	return &request, nil
}

// Get returns one request with its history to a participant or an admin.
func (s *TourRequestService) Get(ctx context.Context, actor *Actor, id uint) (*models.TourRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var request models.TourRequest
	err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Tenant").
		Preload("Landlord").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&request, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeTourRequestNotFound, "Tour request not found", errors.ErrTourRequestNotFound)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour request", err)
	}
	if !request.IsParticipant(actor.ID) && actor.Role != types.RoleAdmin {
		return nil, errors.NewAppError(errors.ErrCodeForbidden, "You do not have access to this tour request", nil)
	}
	return &request, nil
}

// ListForTenant returns the tenant's own requests, newest first.
func (s *TourRequestService) ListForTenant(ctx context.Context, actor *Actor, page, limit int) ([]models.TourRequest, int64, error) {
	if err := requireActor(actor, types.RoleTenant); err != nil {
		return nil, 0, err
	}
	page, limit = pageBounds(page, limit)
	query := s.db.WithContext(ctx).Model(&models.TourRequest{}).
		Where("tenant_id = ?", actor.ID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour requests", err)
	}
	var requests []models.TourRequest
	if err := query.Preload("Property").Preload("Landlord").
		Order("created_at DESC, id DESC").
		Offset(page * limit).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour requests", err)
	}
	return requests, total, nil
}

// ListPendingForLandlord returns requests still awaiting the landlord, oldest first.
func (s *TourRequestService) ListPendingForLandlord(ctx context.Context, actor *Actor) ([]models.TourRequest, error) {
	if err := requireActor(actor, types.RoleLandlord); err != nil {
		return nil, err
	}
	var requests []models.TourRequest
	if err := s.db.WithContext(ctx).Preload("Property").Preload("Tenant").
		Where("landlord_id = ? AND status = ?", actor.ID, models.TourStatusPending).
		Order("created_at ASC, id ASC").
		Find(&requests).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load pending requests", err)
	}
	return requests, nil
}

// ListUpcomingForLandlord returns approved tours from today on, soonest first.
func (s *TourRequestService) ListUpcomingForLandlord(ctx context.Context, actor *Actor) ([]models.TourRequest, error) {
	if err := requireActor(actor, types.RoleLandlord); err != nil {
		return nil, err
	}
	var requests []models.TourRequest
	if err := s.db.WithContext(ctx).Preload("Property").Preload("Tenant").
		Where("landlord_id = ? AND status = ? AND requested_date >= ?", actor.ID, models.TourStatusApproved, s.today()).
		Order("requested_date ASC, id ASC").
		Find(&requests).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load upcoming tours", err)
	}
	return requests, nil
}

// ListAll is the admin projection over every request.
func (s *TourRequestService) ListAll(ctx context.Context, actor *Actor, filter dto.TourRequestFilter) ([]models.TourRequest, int64, error) {
	if err := requireActor(actor, types.RoleAdmin); err != nil {
		return nil, 0, err
	}
	page, limit := pageBounds(filter.Page, filter.Limit)
	query := s.db.WithContext(ctx).Model(&models.TourRequest{})
	if filter.Status != "" {
		status, err := models.ParseTourStatus(filter.Status)
		if err != nil {
			return nil, 0, errors.NewAppError(errors.ErrCodeInvalidStatus, "Unknown tour request status", err)
		}
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour requests", err)
	}
	var requests []models.TourRequest
	if err := query.Preload("Property").Preload("Tenant").Preload("Landlord").
		Order("created_at DESC, id DESC").
		Offset(page * limit).Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load tour requests", err)
	}
	return requests, total, nil
}

// SendTourReminders notifies both parties of every approved tour happening today.
func (s *TourRequestService) SendTourReminders(ctx context.Context) (int, error) {
	today := s.today()
	var requests []models.TourRequest
	if err := s.db.WithContext(ctx).Preload("Property").
		Where("status = ? AND requested_date = ?", models.TourStatusApproved, today).
		Find(&requests).Error; err != nil {
		return 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load today's tours", err)
	}

	for i := range requests {
		r := &requests[i]
		text := fmt.Sprintf("Reminder: the tour of %s is scheduled for today (%s).", propertyTitle(r), today)
		for _, userID := range []uint{r.TenantID, r.LandlordID} {
			s.notify(ctx, notification.Notice{
				UserID:  userID,
				Kind:    constants.NotificationTourReminder,
				Title:   "Tour today",
				Message: text,
				RefID:   r.ID,
			})
		}
	}
	return len(requests), nil
}

func (s *TourRequestService) notify(ctx context.Context, n notification.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notify user %d (%s): %v", n.UserID, n.Kind, err)
	}
}

func propertyTitle(r *models.TourRequest) string {
	if r.Property != nil && r.Property.Title != "" {
		return fmt.Sprintf("%q", r.Property.Title)
	}
	return fmt.Sprintf("property #%d", r.PropertyID)
}
