package controllers

import (
	"makazi/dto"
	"makazi/errors"
	"makazi/middleware"
	"makazi/response"
	"makazi/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func authResponse(res *services.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:        convertToUserResponse(res.User),
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		Redirect:    res.User.Role.Dashboard(),
	}
}

// Register godoc
// @Summary      Create a tenant or landlord account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterInput  true  "Account"
// @Success      201   {object}  response.Response{data=dto.AuthResponse}
// @Failure      409   {object}  response.Response
// @Router       /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := ctrl.auth.Register(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, authResponse(res))
}

// Login godoc
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginInput  true  "Credentials"
// @Success      200   {object}  response.Response{data=dto.AuthResponse}
// @Failure      401   {object}  response.Response
// @Router       /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := ctrl.auth.Login(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, authResponse(res))
}

func (ctrl *AuthController) AuthGoogle(c *gin.Context) {
	var input dto.GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := ctrl.auth.GoogleLogin(c.Request.Context(), input.TokenId)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, authResponse(res))
}

func (ctrl *AuthController) Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Unauthorized(c)
		return
	}
	if err := ctrl.auth.Logout(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.RedirectResponse{Redirect: services.LogoutRedirect(c.Query("path"))})
}

// Session returns the signed-in profile and its dashboard.
func (ctrl *AuthController) Session(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	user, err := ctrl.auth.Profile(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, dto.SessionResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		Dashboard: user.Role.Dashboard(),
	})
}

// Redirect tells a page at ?path= where the visitor belongs.
func (ctrl *AuthController) Redirect(c *gin.Context) {
	path := c.Query("path")
	actor := middleware.CurrentActor(c)
	if actor == nil {
		response.Success(c, dto.RedirectResponse{Redirect: services.DashboardRedirect(path, nil)})
		return
	}

	user, err := ctrl.auth.Profile(c.Request.Context(), actor.ID)
	if errors.HasCode(err, errors.ErrCodeUserNotFound) {
		if claims := middleware.CurrentClaims(c); claims != nil {
			_ = ctrl.auth.Logout(c.Request.Context(), claims)
		}
		response.Success(c, dto.RedirectResponse{Redirect: "login.html"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	role := user.Role
	response.Success(c, dto.RedirectResponse{Redirect: services.DashboardRedirect(path, &role)})
}
