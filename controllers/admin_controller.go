package controllers

import (
	"makazi/dto"
	"makazi/middleware"
	"makazi/response"
	"makazi/services"

	"github.com/gin-gonic/gin"
)

// AdminController serves listing moderation and the full tour request list.
type AdminController struct {
	properties *services.PropertyService
	tours      *services.TourRequestService
}

func NewAdminController(properties *services.PropertyService, tours *services.TourRequestService) *AdminController {
	return &AdminController{properties: properties, tours: tours}
}

func (ctrl *AdminController) GetPendingProperties(c *gin.Context) {
	properties, err := ctrl.properties.ListPending(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponses(properties))
}

func (ctrl *AdminController) ApproveProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	property, err := ctrl.properties.Approve(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToPropertyResponse(*property))
}

// DenyProperty removes an unverified listing.
func (ctrl *AdminController) DenyProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.properties.Deny(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (ctrl *AdminController) GetTourRequests(c *gin.Context) {
	var filter dto.TourRequestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.Page, filter.Limit = pageQuery(c)

	requests, total, err := ctrl.tours.ListAll(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, convertToTourRequestResponses(requests), filter.Page, filter.Limit, int(total))
}
