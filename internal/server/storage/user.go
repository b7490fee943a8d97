package storage

import (
	"context"

	"github.com/iudanet/blogapi/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email is already registered (case-insensitive)
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email, comparison is case-insensitive
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// DeleteUser deletes user by ID together with the user's posts
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID string) error

	// CountUsers returns the number of registered users
	CountUsers(ctx context.Context) (int64, error)
}
