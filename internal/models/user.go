package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleSalesRep UserRole = "sales_rep"
	RoleViewer   UserRole = "viewer"
)

var UserRoles = []UserRole{RoleOwner, RoleAdmin, RoleManager, RoleSalesRep, RoleViewer}

type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:36"`
	CompanyID string   `json:"company_id" gorm:"not null;index;size:36"`
	FullName  string   `json:"full_name" gorm:"not null;size:100"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      UserRole `json:"role" gorm:"not null;default:viewer;size:20" validate:"required,user_role"`

	// Platform staff may act on behalf of any company.
	IsPlatformAdmin bool `json:"is_platform_admin" gorm:"default:false"`

	// Profile info
	AvatarURL   *string `json:"avatar_url" gorm:"size:500"`
	PhoneNumber *string `json:"phone_number" gorm:"size:20"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
