package transport

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Token             string    `json:"token"`
	TokenExpiration   time.Time `json:"tokenExpiration"`
	RefreshToken      string    `json:"refreshToken"`
	RefreshExpiration time.Time `json:"refreshTokenExpiration"`
	Roles             []string  `json:"roles"`
}

type RefreshRequest struct {
	Token        string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,max=50"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=100"`
	FirstName string   `json:"firstName" validate:"required,max=100"`
	LastName  string   `json:"lastName" validate:"required,max=100"`
	Roles     []string `json:"roles" validate:"required,min=1,dive,required,max=64"`
}

type UserResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
}

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type AssignRoleRequest struct {
	RoleName string `json:"roleName" validate:"required,max=64"`
}

type ResetTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ReportForm is bound from multipart form fields.
type ReportForm struct {
	Key         string `form:"key" validate:"max=20"`
	Name        string `form:"name" validate:"required,max=150"`
	DNI         string `form:"dni" validate:"required,len=13,numeric"`
	Cellphone   string `form:"cellphone" validate:"omitempty,max=15,numeric"`
	Date        string `form:"date"`
	Report      string `form:"report" validate:"required"`
	Direction   string `form:"direction" validate:"max=200"`
	Observation string `form:"observation" validate:"max=500"`
}

type CommuniqueRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Content       string `json:"content" validate:"required"`
	TypeStatement string `json:"typeStatement" validate:"required,max=100"`
}

type NameRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

type NeighborhoodRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	BlockID string `json:"blockId" validate:"required"`
}

type LineRequest struct {
	Name                 string `json:"name" validate:"required,max=150"`
	NeighborhoodColonyID string `json:"neighborhoodColonyId" validate:"required"`
}

type DistrictPointRequest struct {
	Latitude             float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude            float64 `json:"longitude" validate:"gte=-180,lte=180"`
	NeighborhoodColonyID string  `json:"neighborhoodColonyId" validate:"required"`
}

type RegistrationRequest struct {
	Date            time.Time `json:"date" validate:"required"`
	Observations    string    `json:"observations" validate:"max=1000"`
	NeighborhoodIDs []string  `json:"neighborhoodIds" validate:"required,min=1,dive,required"`
}
