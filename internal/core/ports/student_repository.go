package ports

import (
	"context"

	"github.com/campusportal/student-records/internal/core/domain"
)

// StudentRepository persists academic records. Save and SaveAll upsert by Student.ID and
// assign IDs to new records.
type StudentRepository interface {
	Save(ctx context.Context, s *domain.Student) error
	SaveAll(ctx context.Context, students []*domain.Student) error
	FindAll(ctx context.Context) ([]*domain.Student, error)
	// FindByID returns domain.ErrStudentNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.Student, error)
	DeleteByID(ctx context.Context, id string) error
}
