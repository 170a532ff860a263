package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Email     string  `json:"email"      validate:"required,email"`
	Nombre    string  `json:"nombre"     validate:"required,min=2"`
	Password  string  `json:"password"   validate:"required,min=8"`
	Rol       string  `json:"rol"        validate:"required,oneof=IMPORTADOR ADMIN CAJERO"`
	CompanyID *string `json:"company_id" validate:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Nombre    string  `json:"nombre"`
	Password  string  `json:"password"   validate:"omitempty,min=8"`
	Rol       string  `json:"rol"        validate:"omitempty,oneof=IMPORTADOR ADMIN CAJERO"`
	CompanyID *string `json:"company_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Nombre    string  `json:"nombre"`
	Rol       string  `json:"rol"`
	CompanyID *string `json:"company_id"`
	Activo    bool    `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}
