package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the closed set of account roles. Anything outside the set is
// rejected at the boundary instead of being carried along as a free string.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	role, err := ParseRole(s)
	if err != nil {
		return err
	}

	*r = role

	return nil
}

type User struct {
	ID          string
	Email       string
	Name        string
	Picture     string
	GoogleID    string
	Role        Role
	Username    string
	PassHash    []byte
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the client-facing view of a user. PassHash and GoogleID never
// leave the service.
type Profile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username,omitempty"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Picture     string     `json:"picture,omitempty"`
	Role        Role       `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Picture:     u.Picture,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
	}
}

type Car struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Seats          int       `json:"seats"`
	Luggage        int       `json:"luggage"`
	Price          string    `json:"price"`
	DriverIncluded bool      `json:"driverIncluded"`
	Image          string    `json:"image"`
	Highlight      []string  `json:"highlight"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Banner struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	Format      string    `json:"format"`
	URL         string    `json:"url"`
	Tone        string    `json:"tone"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Poster struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	Format      string    `json:"format"`
	URL         string    `json:"url"`
	Tone        string    `json:"tone"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Package struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Duration    string    `json:"duration"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthEvent is published to the message broker on account activity.
type AuthEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

const (
	EventUserCreated = "user.created"
	EventUserLogin   = "user.login"
)
