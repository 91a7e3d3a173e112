package dto

import "github.com/jhoicas/panel-clientes/internal/domain/entity"

// LoginRequest credenciales del formulario de login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest perfil del formulario de registro. ConfirmPassword nunca se envía al backend.
type RegisterRequest struct {
	NombreCompleto  string `json:"nombre_completo" validate:"notblank"`
	Username        string `json:"username" validate:"notblank,min=3"`
	Email           string `json:"email" validate:"notblank,basicemail"`
	Password        string `json:"password" validate:"notblank,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// RegisterPayload cuerpo enviado a POST /api/usuarios/registro.
type RegisterPayload struct {
	NombreCompleto string `json:"nombre_completo"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// UserResponse usuario serializado (también es el formato de user_data en el almacenamiento).
type UserResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	NombreCompleto string `json:"nombre_completo,omitempty"`
	Email          string `json:"email,omitempty"`
}

// ToEntity convierte al usuario de dominio.
func (u UserResponse) ToEntity() entity.User {
	return entity.User{ID: u.ID, Username: u.Username, DisplayName: u.NombreCompleto, Email: u.Email}
}

// UserFromEntity convierte desde el usuario de dominio.
func UserFromEntity(u entity.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, NombreCompleto: u.DisplayName, Email: u.Email}
}

// AuthResult resultado etiquetado de login/registro.
type AuthResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user,omitempty"`
	Token   string        `json:"-"`
}

// SessionResponse vista pública de la sesión (sin token).
type SessionResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	State           string        `json:"state"`
	User            *UserResponse `json:"user,omitempty"`
}

// LoginResponse resultado de POST /login y /registro en el panel, con el destino tras autenticar.
type LoginResponse struct {
	AuthResult
	Redirect string `json:"redirect,omitempty"`
}
