package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

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

// PropertySearchPage is one page of public search results.
type PropertySearchPage struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Suggestion string            `json:"suggestion,omitempty"`
}

type PropertyServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Cache    Cache
	Images   ImageStore
	Notifier notification.Notifier
}

type PropertyService struct {
	db       *gorm.DB
	logger   logger.Logger
	cache    Cache
	images   ImageStore
	notifier notification.Notifier
}

func NewPropertyService(opts PropertyServiceOptions) *PropertyService {
	cache := opts.Cache
	if cache == nil {
		cache = NoopCache{}
	}
	return &PropertyService{
		db:       opts.DB,
		logger:   opts.Logger,
		cache:    cache,
		images:   opts.Images,
		notifier: opts.Notifier,
	}
}

// Create stores a new, unverified listing. Images are uploaded before the row is written.
func (s *PropertyService) Create(ctx context.Context, actor *Actor, in dto.CreatePropertyInput, images []ImageUpload) (*models.Property, error) {
	if err := requireActor(actor, types.RoleLandlord); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := validator.ValidateProperty(in.Title, in.Location, in.Price); err != nil {
		return nil, err
	}
	if len(images) > constants.MaxPropertyImages {
		return nil, errors.NewAppError(errors.ErrCodeInvalidImage, fmt.Sprintf("At most %d images are allowed", constants.MaxPropertyImages), nil)
	}

	buffered, err := readImages(images)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploadAll(ctx, actor.ID, buffered)
	if err != nil {
		return nil, err
	}

	property := models.Property{
		LandlordID: actor.ID,
		Title:      in.Title,
		Location:   in.Location,
		Price:      in.Price,
		Details:    strings.TrimSpace(in.Details),
		IsVerified: false,
	}
	property.SetStatus(constants.PropertyStatusAvailable)
	for _, img := range stored {
		property.Images = append(property.Images, img.URL)
		property.ImagePublicIDs = append(property.ImagePublicIDs, img.PublicID)
	}

	if err := s.db.WithContext(ctx).Create(&property).Error; err != nil {
		s.removeImages(ctx, property.ImagePublicIDs)
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not save listing", err)
	}
	s.logger.Info("landlord %d created property %d with %d images", actor.ID, property.ID, len(stored))
	return &property, nil
}

func readImages(images []ImageUpload) ([]ImageUpload, error) {
	buffered := make([]ImageUpload, 0, len(images))
	for _, img := range images {
		data, err := io.ReadAll(io.LimitReader(img.Body, constants.MaxImageSize+1))
		if err != nil {
			return nil, errors.NewAppError(errors.ErrCodeInvalidImage, "Could not read "+img.Filename, err)
		}
		if err := validator.ValidateImage(img.Filename, data); err != nil {
			return nil, err
		}
		buffered = append(buffered, ImageUpload{Filename: img.Filename, Body: bytes.NewReader(data)})
	}
	return buffered, nil
}

func (s *PropertyService) uploadAll(ctx context.Context, ownerID uint, images []ImageUpload) ([]StoredImage, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, errors.NewAppError(errors.ErrCodeUploadFailed, "Image storage is not configured", nil)
	}
	stored := make([]StoredImage, 0, len(images))
	for _, img := range images {
		out, err := s.images.Upload(ctx, ownerID, img)
		if err != nil {
			ids := make([]string, 0, len(stored))
			for _, st := range stored {
				ids = append(ids, st.PublicID)
			}
			s.removeImages(ctx, ids)
			return nil, err
		}
		stored = append(stored, out)
	}
	return stored, nil
}

func (s *PropertyService) removeImages(ctx context.Context, publicIDs []string) {
	if s.images == nil {
		return
	}
	for _, id := range publicIDs {
		if err := s.images.Delete(ctx, id); err != nil {
			s.logger.Warn("delete image %s: %v", id, err)
		}
	}
}

func (s *PropertyService) find(ctx context.Context, id uint, preloadLandlord bool) (*models.Property, error) {
	var property models.Property
	tx := s.db.WithContext(ctx)
	if preloadLandlord {
		tx = tx.Preload("Landlord")
	}
	err := tx.First(&property, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodePropertyNotFound, "Property not found", errors.ErrPropertyNotFound)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load property", err)
	}
	return &property, nil
}

// findOwned loads a listing the actor owns.
func (s *PropertyService) findOwned(ctx context.Context, actor *Actor, id uint) (*models.Property, error) {
	if err := requireActor(actor, types.RoleLandlord); err != nil {
		return nil, err
	}
	property, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if property.LandlordID != actor.ID {
		return nil, errors.NewAppError(errors.ErrCodeForbidden, "You can only manage your own listings", nil)
	}
	return property, nil
}

// Get returns a listing; unverified ones are only visible to their landlord and admins.
func (s *PropertyService) Get(ctx context.Context, viewer *Actor, id uint) (*models.Property, error) {
	property, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !canSeeProperty(viewer, property) {
		return nil, errors.NewAppError(errors.ErrCodePropertyNotFound, "Property not found", errors.ErrPropertyNotFound)
	}
	return property, nil
}

func canSeeProperty(viewer *Actor, property *models.Property) bool {
	if property.IsVerified {
		return true
	}
	owner := viewer.Authenticated() && viewer.ID == property.LandlordID
	return owner || viewer.Is(types.RoleAdmin)
}

func (s *PropertyService) Update(ctx context.Context, actor *Actor, id uint, in dto.UpdatePropertyInput) (*models.Property, error) {
	property, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		property.Title = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		property.Location = strings.TrimSpace(*in.Location)
	}
	if in.Price != nil {
		property.Price = *in.Price
	}
	if in.Details != nil {
		property.Details = strings.TrimSpace(*in.Details)
	}
	if err := validator.ValidateProperty(property.Title, property.Location, property.Price); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", property.ID).Updates(map[string]interface{}{
		"title":    property.Title,
		"location": property.Location,
		"price":    property.Price,
		"details":  property.Details,
	}).Error
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not update listing", err)
	}
	if property.IsVerified {
		s.invalidateSearch(ctx)
	}
	return property, nil
}

// UpdateStatus sets availability; "rented" also hides the listing from search.
func (s *PropertyService) UpdateStatus(ctx context.Context, actor *Actor, id uint, status string) (*models.Property, error) {
	if err := validator.ValidatePropertyStatus(status); err != nil {
		return nil, err
	}
	property, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	property.SetStatus(status)
	err = s.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", property.ID).Updates(map[string]interface{}{
		"status":    property.Status,
		"is_rented": property.IsRented,
	}).Error
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not update status", err)
	}
	s.invalidateSearch(ctx)
	s.logger.Info("property %d status set to %s by landlord %d", property.ID, status, actor.ID)
	return property, nil
}

// ListByLandlord returns the actor's own listings, newest first.
func (s *PropertyService) ListByLandlord(ctx context.Context, actor *Actor) ([]models.Property, error) {
	if err := requireActor(actor, types.RoleLandlord); err != nil {
		return nil, err
	}
	var properties []models.Property
	if err := s.db.WithContext(ctx).Where("landlord_id = ?", actor.ID).Order("id DESC").Find(&properties).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load listings", err)
	}
	return properties, nil
}

// Search lists verified, unrented listings matching the filter.
func (s *PropertyService) Search(ctx context.Context, filter dto.PropertySearchFilter) (*PropertySearchPage, error) {
	filter.Location = strings.TrimSpace(filter.Location)
	filter.Page, filter.Limit = pageBounds(filter.Page, filter.Limit)

	cacheKey := fmt.Sprintf("%s%s|%d|%d|%d", constants.CacheKeyPropertySearch,
		strings.ToLower(filter.Location), filter.PriceMax, filter.Page, filter.Limit)
	var cached PropertySearchPage
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.logger.Warn("read search cache: %v", err)
	} else if hit {
		return &cached, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("is_verified = ? AND is_rented = ?", true, false)
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.PriceMax > 0 {
		query = query.Where("price <= ?", filter.PriceMax)
	}
	query = query.Session(&gorm.Session{})

	page := PropertySearchPage{Page: filter.Page, Limit: filter.Limit}
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not search listings", err)
	}
	if err := query.Preload("Landlord").Order("created_at DESC, id DESC").
		Offset(filter.Page * filter.Limit).Limit(filter.Limit).
		Find(&page.Properties).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not search listings", err)
	}

	if page.Total == 0 && filter.Location != "" {
		page.Suggestion = s.suggestLocation(ctx, filter.Location)
	}

	if err := s.cache.Set(ctx, cacheKey, page, constants.PropertySearchTTL); err != nil {
		s.logger.Warn("write search cache: %v", err)
	}
	return &page, nil
}

func (s *PropertyService) suggestLocation(ctx context.Context, location string) string {
	var locations []string
	err := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("is_verified = ? AND is_rented = ?", true, false).
		Distinct().Pluck("location", &locations).Error
	if err != nil {
		s.logger.Warn("load locations for suggestion: %v", err)
		return ""
	}
	return SuggestLocation(location, locations)
}

func (s *PropertyService) invalidateSearch(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.CacheKeyPropertyPattern); err != nil {
		s.logger.Warn("invalidate search cache: %v", err)
	}
}

// ListPending returns listings awaiting moderation, oldest id first.
func (s *PropertyService) ListPending(ctx context.Context, actor *Actor) ([]models.Property, error) {
	if err := requireActor(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	var properties []models.Property
	if err := s.db.WithContext(ctx).Preload("Landlord").
		Where("is_verified = ?", false).Order("id ASC").Find(&properties).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load pending listings", err)
	}
	return properties, nil
}

// Approve marks an unverified listing as verified.
func (s *PropertyService) Approve(ctx context.Context, actor *Actor, id uint) (*models.Property, error) {
	if err := requireActor(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ? AND is_verified = ?", id, false).
		Update("is_verified", true)
	if res.Error != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not approve listing", res.Error)
	}
	property, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, errors.NewAppError(errors.ErrCodeInvalidState, "Listing is already verified", nil)
	}

	s.invalidateSearch(ctx)
	s.notify(ctx, notification.Notice{
		UserID:  property.LandlordID,
		Kind:    constants.NotificationListingOK,
		Title:   "Listing approved",
		Message: fmt.Sprintf("Your listing %q is now live.", property.Title),
		RefID:   property.ID,
	})
	s.logger.Info("admin %d approved property %d", actor.ID, id)
	return property, nil
}

var errListingVerified = stderrors.New("listing verified concurrently")

// Deny deletes an unverified listing together with its images.
func (s *PropertyService) Deny(ctx context.Context, actor *Actor, id uint) error {
	if err := requireActor(actor, types.RoleAdmin); err != nil {
		return err
	}
	property, err := s.find(ctx, id, false)
	if err != nil {
		return err
	}
	if property.IsVerified {
		return errors.NewAppError(errors.ErrCodeInvalidState, "Verified listings cannot be denied", nil)
	}

	// Messages outlive the listing they mention.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).Where("property_id = ?", id).Update("property_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND is_verified = ?", id, false).Delete(&models.Property{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errListingVerified
		}
		return nil
	})
	if stderrors.Is(err, errListingVerified) {
		return errors.NewAppError(errors.ErrCodeInvalidState, "Listing was verified in the meantime", nil)
	}
	if err != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "Could not delete listing", err)
	}

	s.removeImages(ctx, property.ImagePublicIDs)
	s.notify(ctx, notification.Notice{
		UserID:  property.LandlordID,
		Kind:    constants.NotificationListingDenied,
		Title:   "Listing denied",
		Message: fmt.Sprintf("Your listing %q was not approved and has been removed.", property.Title),
		RefID:   property.ID,
	})
	s.logger.Info("admin %d denied property %d", actor.ID, id)
	return nil
}

func (s *PropertyService) notify(ctx context.Context, n notification.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notify user %d (%s): %v", n.UserID, n.Kind, err)
	}
}
