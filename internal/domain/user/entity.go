package user

import (
	"time"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

// User is a studio administrator account. Clients never have accounts;
// they reach galleries with a slug and password only.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
