package auth

import (
	"slices"

	"github.com/iudanet/blogapi/internal/models"
)

// Role is a closed set of roles an identity can hold.
type Role string

// RoleUser is granted to every registered user.
const RoleUser Role = "USER"

// Identity описывает аутентифицированного пользователя в рамках одного запроса.
// Создается при успешной проверке токена и никуда не сохраняется.
// Поля не изменяются после создания, срез Roles наружу не отдается.
type Identity struct {
	userID string
	email  string
	name   string
	roles  []Role
}

// NewIdentity строит Identity из записи пользователя. Пока все пользователи
// имеют единственную роль RoleUser.
func NewIdentity(user *models.User) Identity {
	return Identity{
		userID: user.ID,
		email:  user.Email,
		name:   user.Name,
		roles:  []Role{RoleUser},
	}
}

// UserID returns the id of the user record
func (i Identity) UserID() string { return i.userID }

// Email returns the login email, it is also the token subject
func (i Identity) Email() string { return i.email }

// Name returns the display name
func (i Identity) Name() string { return i.name }

// Roles returns a copy of the granted roles
func (i Identity) Roles() []Role { return slices.Clone(i.roles) }

// HasRole reports whether the identity holds role
func (i Identity) HasRole(role Role) bool { return slices.Contains(i.roles, role) }

// IsZero reports whether the identity is empty
func (i Identity) IsZero() bool { return i.userID == "" }
