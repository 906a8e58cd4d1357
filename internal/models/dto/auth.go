package dto

import "github.com/hongminglow/medtour-be/internal/models"

// Account types accepted at registration.
const (
	AccountTraveler = "traveler"
	AccountProvider = "provider"
)

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
