package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username       string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null"             json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	Avatar         *string   `gorm:"size:255"                      json:"avatar"`
	RefreshToken   *string   `gorm:"size:255"                      json:"-"`
	Role           string    `gorm:"size:50;not null;default:user" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Contact struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName   string `gorm:"size:50;not null"         json:"first_name"`
	LastName    string `gorm:"size:50;not null"         json:"last_name"`
	Phone       string `gorm:"size:15;not null"         json:"phone"`
	Email       string `gorm:"size:50;not null"         json:"email"`
	DateOfBirth *Date  `gorm:"type:date"                json:"date_of_birth"`
	UserID      uint   `gorm:"index;not null"           json:"user_id"`
}
