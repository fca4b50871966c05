package controllers

import (
	stderrors "errors"
	"io"

	"makazi/constants"
	"makazi/dto"
	"makazi/middleware"
	"makazi/response"
	"makazi/services"

	"github.com/gin-gonic/gin"
)

type TourRequestController struct {
	tours *services.TourRequestService
}

func NewTourRequestController(tours *services.TourRequestService) *TourRequestController {
	return &TourRequestController{tours: tours}
}

// CreateTourRequest godoc
// @Summary      Request a tour of a listing
// @Tags         tour-requests
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTourRequestInput  true  "Request"
// @Success      201   {object}  response.Response{data=dto.TourRequestResponse}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Security     BearerAuth
// @Router       /tour-requests [post]
func (ctrl *TourRequestController) CreateTourRequest(c *gin.Context) {
	var input dto.CreateTourRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := ctrl.tours.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, convertToTourRequestResponse(*request))
}

func (ctrl *TourRequestController) GetTemplate(c *gin.Context) {
	response.Success(c, dto.TourTemplateResponse{Message: constants.TourRequestTemplate})
}

func (ctrl *TourRequestController) GetTourRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := ctrl.tours.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponse(*request))
}

// GetTenantTourRequests lists the caller's requests, newest first.
func (ctrl *TourRequestController) GetTenantTourRequests(c *gin.Context) {
	page, limit := pageQuery(c)
	requests, total, err := ctrl.tours.ListForTenant(c.Request.Context(), middleware.CurrentActor(c), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, convertToTourRequestResponses(requests), page, limit, int(total))
}

func (ctrl *TourRequestController) GetLandlordPending(c *gin.Context) {
	requests, err := ctrl.tours.ListPendingForLandlord(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponses(requests))
}

func (ctrl *TourRequestController) GetLandlordUpcoming(c *gin.Context) {
	requests, err := ctrl.tours.ListUpcomingForLandlord(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponses(requests))
}

// ApproveTourRequest godoc
// @Summary      Approve a pending tour request
// @Tags         tour-requests
// @Produce      json
// @Param        id   path      int  true  "Tour request id"
// @Success      200  {object}  response.Response{data=dto.TourRequestResponse}
// @Failure      409  {object}  response.Response
// @Security     BearerAuth
// @Router       /tour-requests/{id}/approve [put]
func (ctrl *TourRequestController) ApproveTourRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := ctrl.tours.Approve(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponse(*request))
}

// DenyTourRequest godoc
// @Summary      Deny a pending tour request, optionally suggesting another date
// @Tags         tour-requests
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true   "Tour request id"
// @Param        body  body      dto.DenyTourRequestInput  false  "Suggestion"
// @Success      200   {object}  response.Response{data=dto.TourRequestResponse}
// @Failure      409   {object}  response.Response
// @Security     BearerAuth
// @Router       /tour-requests/{id}/deny [put]
func (ctrl *TourRequestController) DenyTourRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// An empty body is a deny without suggestion.
	var input dto.DenyTourRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && !stderrors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	request, err := ctrl.tours.Deny(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponse(*request))
}

func (ctrl *TourRequestController) CancelTourRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	request, err := ctrl.tours.Cancel(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, convertToTourRequestResponse(*request))
}
