package dto

import (
	"time"

	"makazi/types"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=120"`
	Username string `json:"username" binding:"required,min=3,max=64,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,role_self"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	TokenId string `json:"tokenId" binding:"required"`
}

type GoogleUser struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Picture       string `json:"picture"`
}

type UserResponse struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar,omitempty"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	Redirect    string       `json:"redirect"`
}

type SessionResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      types.Role `json:"role"`
	Dashboard string     `json:"dashboard"`
}

type RedirectResponse struct {
	Redirect string `json:"redirect,omitempty"`
}
