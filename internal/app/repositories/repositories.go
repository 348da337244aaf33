package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	CatalogRepository    *CatalogRepository
	StudentRepository    *StudentRepository
	SessionRepository    *SessionRepository
	SubmissionRepository *SubmissionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CatalogRepository:    NewCatalogRepository(db),
		StudentRepository:    NewStudentRepository(db),
		SessionRepository:    NewSessionRepository(db),
		SubmissionRepository: NewSubmissionRepository(db),
	}
}
