package model

import "time"

// Role enumerates user privilege levels. Owner is the single top-level
// administrator who may manage other admin accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

// IsStaff reports whether the role carries dashboard privileges.
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleAdmin || r == RoleOwner
}

// User represents any platform identity: students arrive through the Telegram
// Mini App (their ID is the Telegram numeric ID), staff accounts are created
// by the owner with username/password credentials.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     *string   `json:"username,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	DeviceHash   *string   `json:"-"`
	ChatID       *int64    `json:"chat_id,omitempty"`
	AvatarPath   *string   `json:"avatar_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TelegramLoginRequest is the payload for student authentication via the
// Telegram Mini App shell.
type TelegramLoginRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
}

// StaffLoginRequest is the payload for teacher/admin/owner authentication.
type StaffLoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// CreateStaffRequest is the payload for the owner creating a staff account.
type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=teacher admin"`
}

// UpdateStaffRequest is the payload for the owner updating a staff account.
// An empty password leaves the stored credential unchanged.
type UpdateStaffRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=teacher admin"`
}
