package models

import "time"

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// ValidRole indica se o papel é conhecido
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserFilter filtra a listagem administrativa de usuários. Email e Name
// são buscas parciais sem diferenciar maiúsculas.
type UserFilter struct {
	Role  *string
	Email string
	Name  string
	Skip  int
	Take  int
}
