package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

const (
	maxUserNameLength = 100
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	// DefaultPhoneRegion is used to parse numbers written without a country code.
	DefaultPhoneRegion = "RU"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOwner:
		return RoleOwner, nil
	default:
		return "", fmt.Errorf("role must be one of user, admin, owner")
	}
}

// IsStaff reports whether the role may manage coworkings.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOwner
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("user id must be positive")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email is required")
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}

func UserFromDB(row dbgen.User) User {
	return User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone.String,
		Role:      Role(row.Role),
		CreatedAt: row.CreatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Normalize trims fields, lowercases the email and formats the phone as E.164.
func (r RegisterRequest) Normalize() (RegisterRequest, error) {
	name, err := NormalizeName(r.Name)
	if err != nil {
		return r, err
	}
	email, err := NormalizeEmail(r.Email)
	if err != nil {
		return r, err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return r, err
	}
	phone, err := NormalizePhone(r.Phone)
	if err != nil {
		return r, err
	}
	return RegisterRequest{Name: name, Email: email, Password: r.Password, Phone: phone}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (a AuthResponse) Validate() error {
	if a.Token == "" {
		return fmt.Errorf("token is required")
	}
	return a.User.Validate()
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
// Changing the email or password requires CurrentPassword.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Password        *string `json:"password,omitempty"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
}

type GrantRoleRequest struct {
	UserID int64  `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if len(name) > maxUserNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxUserNameLength)
	}
	return name, nil
}

func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("email is invalid")
	}
	return strings.ToLower(addr.Address), nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be %d bytes or fewer", maxPasswordLength)
	}
	return nil
}

// NormalizePhone formats raw as E.164. An empty input stays empty.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("phone is invalid")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
