package validators

import (
	"strings"
)

type UserRegistrationRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserUpdateRequest struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,min=2,max=50"`
	Introduction *string `json:"introduction" validate:"omitempty,max=500"`
	Contact      *string `json:"contact" validate:"omitempty,phone_number"`
}

func ValidateUserRegistration(req *UserRegistrationRequest) ValidationErrors {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	return ValidateStruct(req)
}

func ValidateUserLogin(req *UserLoginRequest) ValidationErrors {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return ValidateStruct(req)
}

func ValidateUserUpdate(req *UserUpdateRequest) ValidationErrors {
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		req.DisplayName = &name
	}
	return ValidateStruct(req)
}
