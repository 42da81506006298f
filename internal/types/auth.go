// Package types provides the request and response shapes of the ProaJob REST API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Role names as stored in the roles table.
const (
	RoleAdmin           = "admin"
	RoleEmpresaGestora  = "empresa_gestora"
	RoleEmpresaOferente = "empresa_oferente"
	RolePostulante      = "postulante"
)

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user for API responses. The password hash never leaves
// the db package.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse carries the authenticated user and its bearer token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Role is an entry of GET /roles.
type Role struct {
	ID   int    `json:"id_rol"`
	Name string `json:"nombre_rol"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
