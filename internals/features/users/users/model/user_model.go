package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	UserName  string    `gorm:"type:varchar(50);not null;uniqueIndex;column:user_name" json:"user_name"`
	FullName  *string   `gorm:"type:varchar(100);column:full_name" json:"full_name,omitempty"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex;column:email" json:"email"`
	Password  string    `gorm:"type:varchar(250);not null;column:password" json:"-"`
	GoogleID  *string   `gorm:"type:varchar(255);uniqueIndex;column:google_id" json:"google_id,omitempty"`
	AvatarURL *string   `gorm:"type:text;column:avatar_url" json:"avatar_url,omitempty"`
	Timezone  *string   `gorm:"type:varchar(64);column:timezone" json:"timezone,omitempty"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`

	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index;column:deleted_at" json:"-"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return u.validate()
}

// Update parsial lewat Model(&UserModel{}) membawa struct kosong; validasi hanya untuk baris yang sudah dimuat.
func (u *UserModel) BeforeUpdate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		return nil
	}
	return u.validate()
}

func (u *UserModel) validate() error {
	u.UserName = strings.TrimSpace(u.UserName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.UserName == "" {
		return errors.New("user_name wajib diisi")
	}
	if u.Email == "" {
		return errors.New("email wajib diisi")
	}
	return nil
}

// DisplayName: full_name kalau ada, selain itu user_name.
func (u UserModel) DisplayName() string {
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		return *u.FullName
	}
	return u.UserName
}
