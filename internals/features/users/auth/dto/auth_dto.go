package dto

import (
	"github.com/google/uuid"

	userDTO "okrku_backend/internals/features/users/users/dto"
)

type UserResponse = userDTO.UserResponse

/* =========================================================
   REQUEST
========================================================= */

type RegisterRequest struct {
	UserName string  `json:"user_name" validate:"required,min=3,max=50,alphanum"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	Email    string  `json:"email"     validate:"required,email,max=255"`
	Password string  `json:"password"  validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Identifier     string  `json:"identifier"      validate:"required"`
	Password       string  `json:"password"        validate:"required"`
	OrganizationID *string `json:"organization_id" validate:"omitempty,uuid"`
}

type GoogleLoginRequest struct {
	IDToken        string  `json:"id_token"        validate:"required"`
	OrganizationID *string `json:"organization_id" validate:"omitempty,uuid"`
}

// Refresh token boleh lewat body (mobile) atau cookie (web + CSRF).
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

/* =========================================================
   RESPONSE
========================================================= */

// Ringkasan keanggotaan organisasi (untuk login & /me).
type MembershipBrief struct {
	OrganizationID   uuid.UUID `json:"organization_id"   gorm:"column:organization_id"`
	OrganizationName string    `json:"organization_name" gorm:"column:organization_name"`
	OrganizationSlug string    `json:"organization_slug" gorm:"column:organization_slug"`
	Role             string    `json:"role"              gorm:"column:role"`
}

type LoginResponse struct {
	AccessToken   string            `json:"access_token"`
	RefreshToken  string            `json:"refresh_token"`
	TokenType     string            `json:"token_type"`
	ExpiresIn     int64             `json:"expires_in"`
	User          UserResponse      `json:"user"`
	Organizations []MembershipBrief `json:"organizations"`
}

type MeResponse struct {
	User          UserResponse      `json:"user"`
	Organizations []MembershipBrief `json:"organizations"`
}
