package repository

import (
	"github.com/teamflow/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User              UserRepository
	EmailVerification EmailVerificationRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:              NewUserRepository(db),
		EmailVerification: NewEmailVerificationRepository(db),
	}
}
