package models

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a shop customer or administrator account.
type User struct {
	ID            int64     `json:"id_usuario"`
	Nombre        string    `json:"nombre"`
	Apellido      *string   `json:"apellido"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Never expose this to the client
	Telefono      *string   `json:"telefono"`
	Imagen        *string   `json:"imagen"`
	Rol           string    `json:"rol"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool {
	return u.Rol == RoleAdmin
}

// UserPatch lists the profile fields a client may change. Nil fields are left
// untouched.
type UserPatch struct {
	Nombre   *string `json:"nombre,omitempty" validate:"omitempty,min=1,max=50"`
	Apellido *string `json:"apellido,omitempty" validate:"omitempty,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Telefono *string `json:"telefono,omitempty" validate:"omitempty,max=20"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Nombre == nil && p.Apellido == nil && p.Email == nil && p.Telefono == nil
}

// UserFields is the full set of columns the store can update. Services fill
// the internal fields; handlers only ever produce a UserPatch.
type UserFields struct {
	UserPatch
	PasswordHash *string
	Rol          *string
	Imagen       *string
}

// NewUser carries the columns needed to insert an account.
type NewUser struct {
	Nombre       string
	Apellido     *string
	Email        string
	PasswordHash string
	Rol          string
}

// Credential is the (id, email, hash) triple used by maintenance tasks.
type Credential struct {
	ID           int64
	Email        string
	PasswordHash string
}
