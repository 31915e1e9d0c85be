package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/repo"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if n := len(r.Username); n < 5 || n > 16 {
		return fmt.Errorf("username must be 5-16 characters")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if n := len(r.Password); n < 6 || n > 20 {
		return fmt.Errorf("password must be 6-20 characters")
	}
	return nil
}

type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *PasswordResetConfirm) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if n := len(r.Password); n < 6 || n > 20 {
		return fmt.Errorf("password must be 6-20 characters")
	}
	return nil
}

type ContactRequest struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	DateOfBirth *models.Date `json:"date_of_birth"`
}

func (r *ContactRequest) Validate() error {
	if r.FirstName == "" || r.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func (r *ContactRequest) Update() repo.ContactUpdate {
	return repo.ContactUpdate{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Phone:       r.Phone,
		Email:       r.Email,
		DateOfBirth: r.DateOfBirth,
	}
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

func (r *RoleUpdateRequest) Validate() error {
	if r.Role != models.RoleUser && r.Role != models.RoleAdmin {
		return fmt.Errorf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
	}
	return nil
}

// UserResponse is the public view of a user; the password hash and refresh
// token never leave the server.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Avatar    *string   `json:"avatar"`
	Role      string    `json:"role"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		Avatar:    u.Avatar,
		Role:      u.Role,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = NewUserResponse(&users[i])
	}
	return out
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Contacts []models.Contact `json:"contacts"`
}
