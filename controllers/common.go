package controllers

import (
	"strconv"

	"makazi/constants"
	"makazi/dto"
	"makazi/models"
	"makazi/response"
	"makazi/types"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// fail records err for the request log and renders it.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.AppError(c, err)
}

func pageQuery(c *gin.Context) (int, int) {
	var q dto.PageQuery
	_ = c.ShouldBindQuery(&q)
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Limit <= 0 {
		q.Limit = constants.DefaultPageLimit
	}
	if q.Limit > constants.MaxPageLimit {
		q.Limit = constants.MaxPageLimit
	}
	return q.Page, q.Limit
}

func summaryOf(u *models.User) *types.UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	s := u.Summary()
	return &s
}

func convertToUserResponse(u models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func convertToPropertyResponse(p models.Property) dto.PropertyResponse {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return dto.PropertyResponse{
		ID:            p.ID,
		LandlordID:    p.LandlordID,
		Landlord:      summaryOf(p.Landlord),
		Title:         p.Title,
		Location:      p.Location,
		Price:         p.Price,
		Details:       p.Details,
		CoverImageURL: p.CoverImageURL(),
		Images:        images,
		IsVerified:    p.IsVerified,
		IsRented:      p.IsRented,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
	}
}

func convertToPropertyResponses(properties []models.Property) []dto.PropertyResponse {
	out := make([]dto.PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, convertToPropertyResponse(p))
	}
	return out
}

func convertToPropertyBrief(p *models.Property) *dto.PropertyBrief {
	if p == nil || p.ID == 0 {
		return nil
	}
	return &dto.PropertyBrief{
		ID:            p.ID,
		Title:         p.Title,
		Location:      p.Location,
		Price:         p.Price,
		CoverImageURL: p.CoverImageURL(),
	}
}

func convertToTourRequestResponse(r models.TourRequest) dto.TourRequestResponse {
	res := dto.TourRequestResponse{
		ID:                    r.ID,
		Status:                string(r.Status),
		RequestedDate:         r.RequestedDate,
		Message:               r.Message,
		LandlordSuggestedDate: r.LandlordSuggestedDate,
		LandlordMessage:       r.LandlordMessage,
		RespondedAt:           r.RespondedAt,
		CreatedAt:             r.CreatedAt,
		Property:              convertToPropertyBrief(r.Property),
		Tenant:                summaryOf(r.Tenant),
		Landlord:              summaryOf(r.Landlord),
	}
	for _, e := range r.Events {
		res.Events = append(res.Events, dto.TourRequestEventResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		})
	}
	return res
}

func convertToTourRequestResponses(requests []models.TourRequest) []dto.TourRequestResponse {
	out := make([]dto.TourRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, convertToTourRequestResponse(r))
	}
	return out
}

func convertToMessageResponse(m models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		Sender:     summaryOf(m.Sender),
		Recipient:  summaryOf(m.Recipient),
		PropertyID: m.PropertyID,
		Body:       m.Body,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}
