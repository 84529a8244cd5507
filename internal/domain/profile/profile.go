package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
)

type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p Profile) IsDeveloper() bool { return p.Role == RoleDeveloper }
