package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли участников клуба.
const (
	RoleMember     = "member"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User описывает участника клуба.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CanReviewProposals сообщает, может ли участник рассматривать предложения.
func (u *User) CanReviewProposals() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

// Session представляет сохранённую сессию участника.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicMember — публичный профиль участника вместе с его уровнями навыков.
type PublicMember struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	Role      string        `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	Skills    []MemberSkill `json:"skills"`
}
