package controllers

import (
	"mime/multipart"

	"makazi/constants"
	"makazi/dto"
	"makazi/errors"
	"makazi/middleware"
	"makazi/response"
	"makazi/services"

	"github.com/gin-gonic/gin"
)

type PropertyController struct {
	properties *services.PropertyService
}

func NewPropertyController(properties *services.PropertyService) *PropertyController {
	return &PropertyController{properties: properties}
}

// SearchProperties godoc
// @Summary      Search verified listings that are not rented
// @Tags         properties
// @Produce      json
// @Param        location  query     string  false  "Case-insensitive location fragment"
// @Param        priceMax  query     int     false  "Maximum monthly price"
// @Param        page      query     int     false  "Zero-based page"
// @Param        limit     query     int     false  "Page size"
// @Param        merge     query     bool    false  "Fill missing filters from the last search of this session"
// @Success      200       {object}  response.Response{data=dto.PropertySearchResponse}
// @Router       /properties [get]
func (ctrl *PropertyController) SearchProperties(c *gin.Context) {
	var filter dto.PropertySearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)
	if filter.Merge {
		last, err := ctrl.properties.GetLastFilters(ctx, sessionID)
		if err != nil {
			_ = c.Error(err)
		}
		filter = services.MergeFilters(last, filter)
	}

	page, err := ctrl.properties.Search(ctx, filter)
	if err != nil {
		fail(c, err)
		return
	}
	if err := ctrl.properties.SaveLastFilters(ctx, sessionID, filter); err != nil {
		_ = c.Error(err)
	}

	response.SuccessWithPagination(c, dto.PropertySearchResponse{
		Properties: convertToPropertyResponses(page.Properties),
		Suggestion: page.Suggestion,
	}, page.Page, page.Limit, int(page.Total))
}

// LastFilters returns the previous search of this browsing session.
func (ctrl *PropertyController) LastFilters(c *gin.Context) {
	filters, err := ctrl.properties.GetLastFilters(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		fail(c, errors.NewAppError(errors.ErrCodeInternal, "Could not load last search", err))
		return
	}
	if filters == nil {
		filters = &dto.PropertySearchFilter{}
	}
	response.Success(c, filters)
}

func (ctrl *PropertyController) ClearLastFilters(c *gin.Context) {
	if err := ctrl.properties.ClearLastFilters(c.Request.Context(), middleware.SessionID(c)); err != nil {
		fail(c, errors.NewAppError(errors.ErrCodeInternal, "Could not clear last search", err))
		return
	}
	response.Success(c, nil)
}

func (ctrl *PropertyController) GetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	property, err := ctrl.properties.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponse(*property))
}

// CreateProperty godoc
// @Summary      Create a listing with up to four images
// @Tags         properties
// @Accept       multipart/form-data
// @Produce      json
// @Param        title     formData  string  true   "Title"
// @Param        location  formData  string  true   "Location"
// @Param        price     formData  int     true   "Monthly price"
// @Param        details   formData  string  false  "Details"
// @Param        images    formData  file    false  "Images, first is the cover"
// @Success      201       {object}  response.Response{data=dto.PropertyResponse}
// @Security     BearerAuth
// @Router       /properties [post]
func (ctrl *PropertyController) CreateProperty(c *gin.Context) {
	var input dto.CreatePropertyInput
	if err := c.ShouldBind(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if len(files) > constants.MaxPropertyImages {
		response.BadRequest(c, "At most 4 images are allowed")
		return
	}

	uploads := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, "Could not read "+fh.Filename)
			return
		}
		defer f.Close()
		uploads = append(uploads, services.ImageUpload{Filename: fh.Filename, Body: f})
	}

	property, err := ctrl.properties.Create(c.Request.Context(), middleware.CurrentActor(c), input, uploads)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, convertToPropertyResponse(*property))
}

func (ctrl *PropertyController) UpdateProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input dto.UpdatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	property, err := ctrl.properties.Update(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponse(*property))
}

func (ctrl *PropertyController) UpdatePropertyStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input dto.UpdatePropertyStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	property, err := ctrl.properties.UpdateStatus(c.Request.Context(), middleware.CurrentActor(c), id, input.Status)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponse(*property))
}

func (ctrl *PropertyController) GetMyProperties(c *gin.Context) {
	properties, err := ctrl.properties.ListByLandlord(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponses(properties))
}
