package validator

import (
	"fmt"
	"regexp"
	"strings"

	"makazi/constants"
	"makazi/errors"
	"makazi/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// RegisterBindings adds the custom tags used in dto binding rules to gin's validator.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("isodate", isoDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("role_self", selfServiceRole); err != nil {
		return err
	}
	return v.RegisterValidation("username", username)
}

func isoDate(fl playground.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := types.ParseDate(s)
	return err == nil
}

// selfServiceRole rejects roles that cannot be chosen at sign-up.
func selfServiceRole(fl playground.FieldLevel) bool {
	role, err := types.ParseRole(fl.Field().String())
	return err == nil && role != types.RoleAdmin
}

func username(fl playground.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// ValidateEmail checks the address format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.NewAppError(errors.ErrCodeInvalidEmail, "Email is not valid", nil)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.NewAppError(errors.ErrCodeValidation, "Password must be at least 6 characters", nil)
	}
	return nil
}

func ValidateUsername(name string) error {
	if !usernameRegex.MatchString(name) {
		return errors.NewAppError(errors.ErrCodeValidation, "Username must be 3-64 letters, digits, dots, dashes or underscores", nil)
	}
	return nil
}

// ValidateSignupRole parses a role a user may pick for themselves.
func ValidateSignupRole(s string) (types.Role, error) {
	role, err := types.ParseRole(s)
	if err != nil || role == types.RoleAdmin {
		return 0, errors.NewAppError(errors.ErrCodeInvalidRole, "Role must be tenant or landlord", err)
	}
	return role, nil
}

func ValidateProperty(title, location string, price int64) error {
	if strings.TrimSpace(title) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Title is required", nil)
	}
	if strings.TrimSpace(location) == "" {
		return errors.NewAppError(errors.ErrCodeRequiredField, "Location is required", nil)
	}
	if price <= 0 {
		return errors.NewAppError(errors.ErrCodeInvalidAmount, "Price must be greater than zero", nil)
	}
	return nil
}

func ValidatePropertyStatus(status string) error {
	for _, s := range constants.PropertyStatuses {
		if s == status {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeInvalidStatus, "Status must be one of available, rented, unavailable", nil)
}

// ValidateImage checks size and sniffed content type of an uploaded image.
func ValidateImage(filename string, data []byte) error {
	if len(data) == 0 {
		return errors.NewAppError(errors.ErrCodeInvalidImage, fmt.Sprintf("%s is empty", filename), nil)
	}
	if len(data) > constants.MaxImageSize {
		return errors.NewAppError(errors.ErrCodeInvalidImage, fmt.Sprintf("%s is larger than 5MB", filename), nil)
	}
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeInvalidImage, fmt.Sprintf("%s is %s, not a supported image", filename, mtype.String()), nil)
}

// ParseTourDate parses a YYYY-MM-DD date that must not be before today.
func ParseTourDate(field, s string, today types.Date) (types.Date, error) {
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, errors.NewAppError(errors.ErrCodeInvalidFormat, field+" must use format YYYY-MM-DD", err)
	}
	if d.Before(today) {
		return types.Date{}, errors.NewAppError(errors.ErrCodeValidation, field+" cannot be in the past", nil)
	}
	return d, nil
}
