package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"okrku_backend/internals/features/users/users/model"
)

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserName    string     `json:"user_name"`
	FullName    *string    `json:"full_name,omitempty"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
	IsActive    bool       `json:"is_active"`
	HasGoogle   bool       `json:"has_google"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromModel(u *model.UserModel) UserResponse {
	return UserResponse{
		ID:          u.ID,
		UserName:    u.UserName,
		FullName:    u.FullName,
		DisplayName: u.DisplayName(),
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		Timezone:    u.Timezone,
		IsActive:    u.IsActive,
		HasGoogle:   u.GoogleID != nil && *u.GoogleID != "",
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// PATCH /api/u/users/me: semua field opsional.
type UpdateMeRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3,max=50,alphanum"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	Timezone *string `json:"timezone"  validate:"omitempty,timezone"`
}

// ToUpdates hanya berisi kolom yang dikirim.
func (r UpdateMeRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.UserName != nil {
		m["user_name"] = strings.TrimSpace(*r.UserName)
	}
	if r.FullName != nil {
		if v := strings.TrimSpace(*r.FullName); v == "" {
			m["full_name"] = nil
		} else {
			m["full_name"] = v
		}
	}
	if r.Timezone != nil {
		m["timezone"] = strings.TrimSpace(*r.Timezone)
	}
	return m
}
