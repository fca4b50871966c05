package validator

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"makazi/dto"
	"makazi/errors"
	"makazi/types"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBindings(t *testing.T) {
	require.NoError(t, RegisterBindings())

	valid := dto.RegisterInput{Name: "Wanjiru", Username: "wanjiru_k", Email: "w@example.com", Password: "secret1", Role: "landlord"}
	assert.NoError(t, binding.Validator.ValidateStruct(valid))

	admin := valid
	admin.Role = "admin"
	assert.Error(t, binding.Validator.ValidateStruct(admin))

	badName := valid
	badName.Username = "no spaces"
	assert.Error(t, binding.Validator.ValidateStruct(badName))

	tour := dto.CreateTourRequestInput{PropertyID: 1, RequestedDate: "2025-13-01"}
	assert.Error(t, binding.Validator.ValidateStruct(tour))
	tour.RequestedDate = "2025-12-01"
	assert.NoError(t, binding.Validator.ValidateStruct(tour))
}

func TestValidateHelpers(t *testing.T) {
	assert.NoError(t, ValidateEmail("a.b+c@example.co.ke"))
	assert.True(t, errors.HasCode(ValidateEmail("not-an-email"), errors.ErrCodeInvalidEmail))
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))

	_, err := ValidateSignupRole("admin")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRole))
	role, err := ValidateSignupRole("Tenant")
	require.NoError(t, err)
	assert.Equal(t, types.RoleTenant, role)

	assert.True(t, errors.HasCode(ValidateProperty("", "Karen", 1), errors.ErrCodeRequiredField))
	assert.True(t, errors.HasCode(ValidateProperty("House", "Karen", 0), errors.ErrCodeInvalidAmount))
	assert.NoError(t, ValidateProperty("House", "Karen", 150000))

	assert.NoError(t, ValidatePropertyStatus("rented"))
	assert.True(t, errors.HasCode(ValidatePropertyStatus("sold"), errors.ErrCodeInvalidStatus))
}

func TestValidateImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assert.NoError(t, ValidateImage("photo.png", buf.Bytes()))

	err := ValidateImage("notes.txt", []byte("plain text, not a picture"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidImage), "got %v", err)
	assert.Error(t, ValidateImage("empty.png", nil))
}

func TestParseTourDate(t *testing.T) {
	today, err := types.ParseDate("2025-06-01")
	require.NoError(t, err)

	d, err := ParseTourDate("requestedDate", "2025-06-01", today)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", d.String())

	_, err = ParseTourDate("requestedDate", "2025-05-31", today)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = ParseTourDate("requestedDate", "June 2", today)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
