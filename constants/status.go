package constants

import "time"

// Property status
const (
	PropertyStatusAvailable   = "available"
	PropertyStatusRented      = "rented"
	PropertyStatusUnavailable = "unavailable"
)

var PropertyStatuses = []string{
	PropertyStatusAvailable,
	PropertyStatusRented,
	PropertyStatusUnavailable,
}

// Notification kinds
const (
	NotificationTourRequested = "tour_requested"
	NotificationTourApproved  = "tour_approved"
	NotificationTourDenied    = "tour_denied"
	NotificationTourCancelled = "tour_cancelled"
	NotificationTourReminder  = "tour_reminder"
	NotificationListingOK     = "listing_approved"
	NotificationListingDenied = "listing_denied"
	NotificationNewMessage    = "new_message"
)

// Cache keys
const (
	CacheKeyPropertySearch  = "properties:search:"
	CacheKeyPropertyPattern = "properties:*"
	CacheKeyRevokedToken    = "auth:revoked:"
	PropertySearchTTL       = 10 * time.Minute
)

// Pagination
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Listing images
const (
	MaxPropertyImages   = 4
	PropertyImageFolder = "property-images"
	MaxImageSize        = 5 << 20
)

// TourRequestTemplate is the canned message offered to tenants.
const TourRequestTemplate = "Hello, I am interested in this property. The date I selected for a tour works best for me, " +
	"but please let me know if another time is better. Thanks!"
