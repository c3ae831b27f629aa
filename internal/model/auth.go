package model

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type CreateUserRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type UserResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	FirstName         *string    `json:"firstName"`
	LastName          *string    `json:"lastName"`
	Phone             *string    `json:"phone"`
	BirthDate         *time.Time `json:"birthDate"`
	Bio               *string    `json:"bio"`
	AvatarURL         *string    `json:"avatarUrl"`
	Location          *string    `json:"location"`
	Website           *string    `json:"website"`
	Company           *string    `json:"company"`
	JobTitle          *string    `json:"jobTitle"`
	ProfileVisibility string     `json:"profileVisibility"`
	ShowEmail         bool       `json:"showEmail"`
	ShowPhone         bool       `json:"showPhone"`
	ShowBirthDate     bool       `json:"showBirthDate"`
	LastLogin         *time.Time `json:"lastLogin"`
	ProfileUpdatedAt  time.Time  `json:"profileUpdatedAt"`
}

func NewUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		Username:          user.Username,
		IsActive:          user.IsActive,
		CreatedAt:         user.CreatedAt,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Phone:             user.Phone,
		BirthDate:         user.BirthDate,
		Bio:               user.Bio,
		AvatarURL:         user.AvatarURL,
		Location:          user.Location,
		Website:           user.Website,
		Company:           user.Company,
		JobTitle:          user.JobTitle,
		ProfileVisibility: user.ProfileVisibility,
		ShowEmail:         user.ShowEmail,
		ShowPhone:         user.ShowPhone,
		ShowBirthDate:     user.ShowBirthDate,
		LastLogin:         user.LastLogin,
		ProfileUpdatedAt:  user.ProfileUpdatedAt,
	}
}
